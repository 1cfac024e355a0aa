package validator

import (
	"fmt"
	"slices"
)

// Range validates min <= value <= max.
func Range[T Numeric](field string, value, min, max T) Rule {
	return Rule{
		Check: func() bool { return value >= min && value <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be between %v and %v", min, max)},
	}
}

// Min validates value >= min.
func Min[T Numeric](field string, value, min T) Rule {
	return Rule{
		Check: func() bool { return value >= min },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %v", min)},
	}
}

// MaxLen validates the byte length of a string.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d bytes", max)},
	}
}

// OneOf validates that value is one of options. The empty string passes;
// combine with a required rule where absence is an error.
func OneOf(field, value string, options []string) Rule {
	return Rule{
		Check: func() bool { return value == "" || slices.Contains(options, value) },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v", options)},
	}
}

// Optional applies rule to *value when it is set. A nil pointer passes.
func Optional[T any](value *T, rule func(T) Rule) Rule {
	if value == nil {
		return Rule{Check: func() bool { return true }}
	}
	return rule(*value)
}
