// Package device produces best-effort device snapshots from whatever runtime
// signals are available.
//
// A snapshot (Info) combines:
//   - Form factor – mobile, tablet or desktop
//   - Operating system and browser family, matched against ordered rule tables
//   - Capability flags – touch, WebGL, service workers, camera, …
//   - Performance signals – memory, cores, connection and battery
//   - Display geometry and safe-area insets
//
// Signals are read through the Source interface. The clienthints package
// implements it over HTTP Client Hints and client beacons; tests usually use
// a small fake.
//
// Detection never fails. An absent API, a denied permission or a panicking
// accessor resolves the affected field to its documented default
// (memory=4GB, cores=4, effective type "4g", downlink 10Mbps, rtt 100ms,
// battery full and charging) without touching any other field. Camera and
// microphone probes acquire a stream, stop every track immediately, and are
// bounded by WithProbeTimeout so an unanswered permission prompt cannot stall
// detection.
//
// # Tiers
//
// ClassifyTier is a pure function of Performance:
//
//	low-end   memory < 4GB OR cores < 4 OR connection 2g/slow-2g
//	high-end  memory >= 8GB AND cores >= 8 AND connection 4g
//	mid-range everything else
//
// IsLowEnd and IsHighEnd are defined in terms of ClassifyTier, so the boolean
// and categorical views can never disagree.
//
// # Usage
//
//	m := device.NewManager(ctx, src, device.WithLogger(log))
//	unsubscribe := m.AddListener(func(info device.Info) {
//		log.Info("device detected", slog.String("device", info.ShortIdentifier()))
//	})
//	defer unsubscribe()
//
//	if m.IsLowEnd() {
//		// serve the lightweight variant
//	}
//
// Listeners registered before detection completes are called as soon as the
// first snapshot exists, and again after every Redetect.
package device
