package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/sellerhub/backend/internal/domain/integration"
)

// SetupValidator configures the binding validator with custom tags. Call once
// before serving requests; gin's binding validator is a process-wide singleton.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON (or form) tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// "platform" accepts only the marketplaces we integrate with
	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return integration.Platform(fl.Field().String()).IsValid()
	})
}
