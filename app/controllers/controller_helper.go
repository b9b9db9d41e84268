package controllers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ricardofreitas-dev/PagBem/internal/pkg/usercontext"
)

// Session keys shared between controllers and middleware.
const (
	AUTH_KEY      string = "authenticated"
	USER_ID       string = "user_id"
	USER_NAME     string = "user_name"
	USER_IS_ADMIN string = "user_is_admin"
)

// Error codes surfaced to API clients.
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeNotFound      = "RESOURCE_NOT_FOUND"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodePaymentFailed = "PAYMENT_FAILED"
	ErrCodeRefundFailed  = "REFUND_FAILED"
	ErrCodeUnexpected    = "UNEXPECTED_ERROR"
)

var validate = validator.New()

// jsonError renders the uniform error shape used by every API endpoint.
func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// parseAndValidate binds the JSON body into out and runs struct validation.
func parseAndValidate(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return err
	}
	return validate.Struct(out)
}

// currentUserID returns the authenticated user id from the request context.
func currentUserID(c *fiber.Ctx) uint {
	return usercontext.GetUserID(c)
}

// isAdmin reports whether the current request belongs to an admin user.
func isAdmin(c *fiber.Ctx) bool {
	uc := usercontext.GetUserContext(c)
	return uc.IsAdmin
}

// formatTimePtr formats an optional timestamp as RFC3339 UTC, or nil.
func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
