// Package observable provides wrappers that instrument command and query handlers with metrics,
// tracing and logging, so the handlers themselves only contain the rental workflow.
//
// The wrappers are applied at wiring time, in cmd/rentald:
//
//	core := returnborrowing.NewCommandHandler(engine, payments, publisher)
//
//	handler, err := observable.NewCommandWrapper[returnborrowing.Command, returnborrowing.Result](
//		core,
//		observable.WithCommandMetrics[returnborrowing.Command, returnborrowing.Result](metricsCollector),
//		observable.WithCommandTracing[returnborrowing.Command, returnborrowing.Result](tracingCollector),
//		observable.WithCommandLogging[returnborrowing.Command, returnborrowing.Result](logger),
//	)
//
// Unit tests of the handlers use them unwrapped.
package observable
