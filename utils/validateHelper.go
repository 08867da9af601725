package utils

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Client identifiers are device-generated: uuid-ish, no whitespace, bounded length.
var clientIdPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)

func IsValidClientId(id string) bool {
	return clientIdPattern.MatchString(id)
}

// RegisterBindingValidators installs custom rules on gin's binding engine.
// Call once from main before routes are served.
func RegisterBindingValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("clientid", func(fl validator.FieldLevel) bool {
		return IsValidClientId(fl.Field().String())
	})
}
