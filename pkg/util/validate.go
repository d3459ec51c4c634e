package util

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	globPattern   = regexp.MustCompile(`^[^\x00]+$`)
)

// Validator returns the shared validator instance used for configuration and
// plugin metadata.
//
// Registered tags beyond the built-ins:
//   - semver: X.Y.Z with optional pre-release/build suffix
//   - glob:   a non-empty pattern without NUL bytes
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
			return globPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})
	return validateInst
}
