package utils

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/foodbridge-dev/foodbridge/internal/errors"
)

// ContentValidator checks and sanitizes chat message content before it is
// persisted. Sanitization strips any markup so stored content is plain text.
type ContentValidator struct {
	maxLength int
	policy    *bluemonday.Policy
}

func NewContentValidator(maxLength int) *ContentValidator {
	return &ContentValidator{maxLength: maxLength, policy: bluemonday.StrictPolicy()}
}

func (v *ContentValidator) Content(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errors.EmptyContent()
	}
	if utf8.RuneCountInString(content) > v.maxLength {
		return "", &errors.ErrorWithStatusCode{Message: "Message is too long", StatusCode: http.StatusBadRequest}
	}
	return v.policy.Sanitize(content), nil
}

// PostValidator enforces required field presence on food post writes.
type PostValidator struct{}

func (v *PostValidator) Fields(foodName, quantity, location string) error {
	if strings.TrimSpace(foodName) == "" || strings.TrimSpace(quantity) == "" || strings.TrimSpace(location) == "" {
		return &errors.ErrorWithStatusCode{Message: "Food name, quantity and location are required", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// RegistrationValidator checks the self-service registration fields.
type RegistrationValidator struct{}

func (v *RegistrationValidator) Name(name string) error {
	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 50 {
		return &errors.ErrorWithStatusCode{Message: "Name must be 2-50 characters", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func (v *RegistrationValidator) Email(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return &errors.ErrorWithStatusCode{Message: "Email is invalid", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func (v *RegistrationValidator) Password(password string) error {
	if len(password) < 6 {
		return &errors.ErrorWithStatusCode{Message: "Password must be at least 6 characters", StatusCode: http.StatusBadRequest}
	}
	return nil
}
