package request

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/tz"
)

// RegisterValidations adds the project's custom binding tags to v.
//
//	timezone: an IANA zone name such as "Europe/Madrid".
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("timezone", func(fl validator.FieldLevel) bool {
		return tz.IsValid(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register timezone validation: %w", err)
	}
	return nil
}
