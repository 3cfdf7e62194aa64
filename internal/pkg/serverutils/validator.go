package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks struct tags on a parsed request body and maps
// the first violation to a 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if ok := errors.As(err, &verrs); ok && len(verrs) > 0 {
			f := verrs[0]
			return NewAppError(fiber.StatusBadRequest,
				fmt.Sprintf("Field '%s' failed on '%s' validation", f.Field(), f.Tag()))
		}
		return NewAppError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}
