package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Reference ids come from the sales system as PREFIX-NUMBER, e.g. SALE-1001.
var referencePattern = regexp.MustCompile(`^[A-Z]+-[0-9]+$`)

// RegisterValidations installs custom binding rules on gin's validator
// engine. Call once during startup, before any routes are served.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("reference", func(fl validator.FieldLevel) bool {
		return referencePattern.MatchString(fl.Field().String())
	})
}
