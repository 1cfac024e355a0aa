// Package resource derives a loading-focused configuration from a device
// snapshot and applies it to documents: image URL parameters, preload and
// prefetch hints, and root classes for motion and CSS features.
//
// Slow connections and a discharging battery below 20% both lower the image
// quality. When both hold the overrides are merged and the lower quality is
// used.
package resource
