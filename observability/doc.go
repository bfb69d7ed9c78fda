// Package observability provides OpenTelemetry tracing and metrics for
// rxkit subscriptions.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("rxdemo"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewStreamMetrics(observability.Meter("rxdemo"))
//	rt := stream.NewRuntime(stream.WithMetrics(metrics))
//
// Every subscription made through such a runtime records
// rx.subscriptions.started, rx.subscriptions.active,
// rx.subscriptions.terminated{outcome}, rx.signals{kind} and
// rx.subscription.duration, and opens one "rx.subscribe <stream>" span.
package observability
