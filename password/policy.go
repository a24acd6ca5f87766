package password

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrWeakPassword is returned when a candidate fails the strength policy.
var ErrWeakPassword = errors.New("password does not meet strength policy")

var (
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// Policy is the admin password strength rule: one upper-case letter, one
// lower-case letter, one digit and at least MinLength characters.
type Policy struct {
	MinLength int
}

// DefaultPolicy requires eight characters.
func DefaultPolicy() Policy {
	return Policy{MinLength: 8}
}

// Validate returns an error wrapping ErrWeakPassword when candidate fails
// any rule.
func (p Policy) Validate(candidate string) error {
	minLength := p.MinLength
	if minLength <= 0 {
		minLength = DefaultPolicy().MinLength
	}

	err := validation.Validate(candidate,
		validation.Required,
		validation.RuneLength(minLength, 0).Error(fmt.Sprintf("must be at least %d characters", minLength)),
		validation.Match(upperPattern).Error("must contain an upper-case letter"),
		validation.Match(lowerPattern).Error("must contain a lower-case letter"),
		validation.Match(digitPattern).Error("must contain a digit"),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}
	return nil
}
