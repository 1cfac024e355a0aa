// Package validator provides small composable validation rules.
//
// A Rule pairs a Check function with the error reported when it fails. Apply
// evaluates a list of rules and aggregates the failures into
// ValidationErrors, which satisfies errors.Is(err, ErrValidationFailed):
//
//	err := validator.Apply(
//		validator.MaxLen("user_agent", r.UserAgent, 1024),
//		validator.Optional(r.PixelRatio, func(v float64) validator.Rule {
//			return validator.Range("pixel_ratio", v, 0.5, 8)
//		}),
//	)
package validator
