package handler

import (
	"github.com/carenet/portal/internal/core/service"
)

// echoValidator adapts the portal's validator so Echo can call c.Validate(req).
// Failures come back as *domain.ValidationError and map to 422.
type echoValidator struct {
	rules *service.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator(rules *service.Validator) *echoValidator {
	return &echoValidator{rules: rules}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.rules.Struct(i)
}
