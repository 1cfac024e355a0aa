// Package httpserver runs an http.Server with graceful shutdown, response
// compression and readiness probes.
//
// Run blocks until the context is cancelled or SIGINT/SIGTERM arrives, then
// drains connections within the shutdown timeout and runs the registered
// closers (session registries, snapshot stores, Redis clients) in order:
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithCloser("telemetry", func(context.Context) error { return reg.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// WithCompression negotiates gzip, brotli or zstd through
// github.com/CAFxX/httpcompression and wraps everything else, so HTML
// rewritten by pkg/rewrite is compressed once rewriting is done.
//
// HealthCheckHandler answers liveness probes when given no checks and
// readiness probes otherwise; a failing check returns 503 with the failing
// check's error in the JSON body.
package httpserver
