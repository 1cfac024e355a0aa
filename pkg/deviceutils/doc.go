// Package deviceutils offers one-shot device predicates that work without a
// manager. Each helper reads a device.Source directly and never panics; an
// unavailable signal yields the conservative answer.
//
// GenerateFingerprint and ClientIP work on the incoming request instead.
package deviceutils
