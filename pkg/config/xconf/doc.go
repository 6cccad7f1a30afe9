// Package xconf 基于 koanf 的配置加载。
//
// 只提供增值功能（格式检测、结构体反序列化、热重载），
// 基础读取操作请直接使用 Client() 返回的 koanf 实例。
//
//	cfg, err := xconf.New("/etc/eventkit/config.yaml")
//	if err != nil {
//		return err
//	}
//	var app AppConfig
//	if err := cfg.Unmarshal("", &app); err != nil {
//		return err
//	}
//
// # 热重载
//
// [Watcher] 监视配置文件所在目录，变更经防抖后调用 Reload 并回调通知。
// Watcher.Run 阻塞直到 ctx 取消，适合放入 xrun.Group。
package xconf
