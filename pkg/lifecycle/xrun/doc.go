// Package xrun 提供进程内服务的生命周期管理。
//
// 基于 errgroup 协调多个长期运行的服务：任一服务返回错误或收到退出信号时，
// 其余服务通过 context 收到取消通知并优雅退出。
//
// 典型用法是在 cmd 入口组合缓存清理、统计上报、配置热加载等后台任务：
//
//	err := xrun.Run(ctx,
//	    janitor.Run,
//	    xrun.Ticker(time.Minute, false, reportStats),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 正常退出
//	}
//
// 设计决策: Wait 过滤 context.Canceled，但保留 Cancel(cause) 设置的显式原因
// （如 *SignalError），调用方可据此区分"被信号终止"与"服务出错"。
package xrun
