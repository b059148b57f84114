package handlers

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// accountNoPattern: uppercase alphanumerics and dashes, 4 to 20 characters,
// starting and ending on an alphanumeric.
var accountNoPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,18}[A-Z0-9]$`)

var registerValidationsOnce sync.Once

// registerCustomValidations installs binding validations on gin's validator
// engine. Safe to call from multiple route registrations.
func registerCustomValidations() {
	registerValidationsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("accountno", func(fl validator.FieldLevel) bool {
			return accountNoPattern.MatchString(fl.Field().String())
		})
	})
}
