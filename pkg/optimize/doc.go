// Package optimize turns a device snapshot into an optimization config and
// keeps it current at runtime.
//
// ConfigFor maps the device tier onto a fixed override table. A Manager holds
// the resulting config and adjusts it from live signals:
//
//	m := optimize.NewManager(&info, optimize.WithLogger(log))
//	defer m.Cleanup()
//
//	_, _ = m.SetupLazyLoading(doc, "")
//	_ = m.SetupPerformanceMonitoring(ctx, doc, optimize.Monitors{
//		Frames:     frames,
//		Memory:     sampler,
//		Connection: changes,
//	})
//
// Frame-rate and memory degradation only ever lower the config; a degraded
// manager stays degraded until it is replaced.
//
// Debounce, Throttle, BatchProcess and ConcurrentProcess read their defaults
// from the current config.
package optimize
