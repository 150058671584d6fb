package sessauth

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateCredentials rejects structurally invalid credentials before any
// network round trip. The failure maps onto ErrInvalidCredentials so callers
// see one error class for bad input regardless of where it was caught.
func validateCredentials(creds Credentials) error {
	if err := validate.Struct(creds); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return nil
}
