// Package clienthints implements device.Source over HTTP Client Hints and a
// JSON report posted by the page.
//
// Headers such as Sec-CH-Device-Memory, Sec-CH-Viewport-Width, Sec-CH-DPR,
// ECT, Downlink, RTT and Save-Data cover what the server can learn on the
// first request. Values only script can read (touch points, cores, battery,
// capability probes, safe-area insets) arrive in a Report and take
// precedence over headers.
//
//	r := chi.NewRouter()
//	r.Use(clienthints.Middleware())
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//		info, _ := clienthints.InfoFromContext(r.Context())
//		...
//	})
package clienthints
