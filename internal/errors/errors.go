package errors

import "net/http"

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Code       string // machine-readable failure code for API clients
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Failure codes returned by the domain services. Clients branch on these
// rather than on message text.
const (
	CodeDuplicateEmail    = "duplicate_email"
	CodeDuplicateUsername = "duplicate_username"
	CodeNotFound          = "not_found"
	CodeBlocked           = "blocked"
	CodeBadCredentials    = "bad_credentials"
	CodePendingApproval   = "pending_approval"
	CodeInvalidTransition = "invalid_transition"
	CodeEmptyContent      = "empty_content"
)

func DuplicateEmail() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Email already registered", StatusCode: http.StatusConflict, Code: CodeDuplicateEmail}
}

func DuplicateUsername() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Username already taken", StatusCode: http.StatusConflict, Code: CodeDuplicateUsername}
}

func NotFound(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound, Code: CodeNotFound}
}

func Blocked() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Account restricted", StatusCode: http.StatusForbidden, Code: CodeBlocked}
}

func BadCredentials() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized, Code: CodeBadCredentials}
}

func PendingApproval() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Account awaiting admin approval", StatusCode: http.StatusForbidden, Code: CodePendingApproval}
}

func InvalidTransition(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusConflict, Code: CodeInvalidTransition}
}

func EmptyContent() *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: "Message content must not be blank", StatusCode: http.StatusBadRequest, Code: CodeEmptyContent}
}

// HasCode reports whether err is a service failure with the given code.
func HasCode(err error, code string) bool {
	e, ok := err.(*ErrorWithStatusCode)
	return ok && e.Code == code
}

func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
