// Package xmetrics 提供统一的可观测性接口（metrics + tracing）。
//
// 业务代码只依赖 Observer/Span/Attr 接口，默认实现基于 OpenTelemetry。
// 未注入 Observer 时使用 [NoopObserver]，调用 [Start] 时 nil observer 也是安全的。
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xcatalog",
//		Operation: "event",
//		Kind:      xmetrics.KindClient,
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// # 指标命名
//
//   - eventkit.operation.total
//   - eventkit.operation.duration
//
// 统一属性：component / operation / status。
package xmetrics
