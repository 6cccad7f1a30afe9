// Package xevent 定义活动发现业务的领域类型与纯函数。
//
// 包含活动（Event）、报名（RSVP）、用户资料（Profile），
// 以及列表筛选（Filter）和基于规则打分的活动推荐（Recommend）。
// 本包不做任何 I/O，存储与缓存分别由 xstore 与 xcatalog 负责。
package xevent
