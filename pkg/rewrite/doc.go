// Package rewrite adapts server-rendered HTML to the requesting device.
//
// Middleware buffers text/html responses up to a limit, parses them with the
// dom package and applies resource.Manager (image parameters, preload and
// prefetch hints, animation and feature classes) followed by optimize lazy
// loading. Place it after clienthints.Middleware so the detected device is
// read from the request context:
//
//	r := chi.NewRouter()
//	r.Use(clienthints.Middleware())
//	r.Use(rewrite.Middleware(rewrite.WithLogger(log)))
//
// Anything that cannot be rewritten safely is streamed unchanged.
package rewrite
