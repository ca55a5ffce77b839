package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind discriminates the closed set of failure classes.
type Kind int

const (
	KindUnclassified Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthentication
	KindAuthorization
	KindExternalService
	KindStorage
	KindRateLimited
)

var kindNames = map[Kind]string{
	KindUnclassified:    "unclassified",
	KindValidation:      "validation",
	KindNotFound:        "not_found",
	KindConflict:        "conflict",
	KindAuthentication:  "authentication",
	KindAuthorization:   "authorization",
	KindExternalService: "external_service",
	KindStorage:         "storage",
	KindRateLimited:     "rate_limited",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status returns the fixed transport status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindExternalService:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Stable outward codes.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidRole        = "INVALID_ROLE"
	CodeRouteNotFound      = "ROUTE_NOT_FOUND"
	CodeUserNotActive      = "USER_NOT_ACTIVE"
	CodeTokenNotProvided   = "TOKEN_NOT_PROVIDED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeStorage            = "DATABASE_ERROR"
	CodeUnclassified       = "INTERNAL_SERVER_ERROR"
)

const (
	genericStorageDetail      = "The request could not be completed because of a storage problem"
	genericUnclassifiedDetail = "Something went wrong while processing the request"
)

// Failure is the classified error value shared by every layer.
type Failure struct {
	Kind       Kind
	Code       string
	Message    string
	Detail     string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Code, f.Message, f.Err)
	}
	if f.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", f.Code, f.Message, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches failures by code so callers can compare against sentinel constructors.
func (f *Failure) Is(target error) bool {
	var other *Failure
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == f.Code
}

// Public returns the projection safe to render to callers.
func (f *Failure) Public() *Failure {
	out := &Failure{
		Kind:       f.Kind,
		Code:       f.Code,
		Message:    f.Message,
		Detail:     f.Detail,
		HTTPStatus: f.HTTPStatus,
		Details:    f.Details,
	}
	switch f.Kind {
	case KindStorage:
		out.Detail = genericStorageDetail
		out.Details = nil
	case KindUnclassified:
		out.Detail = genericUnclassifiedDetail
		out.Details = nil
	}
	return out
}

func newFailure(kind Kind, code, message, detail string) *Failure {
	return &Failure{Kind: kind, Code: code, Message: message, Detail: detail, HTTPStatus: kind.Status()}
}

// NewValidation reports malformed input.
func NewValidation(detail string, details map[string]any) *Failure {
	f := newFailure(KindValidation, CodeValidation, "Validation failed", detail)
	f.Details = details
	return f
}

// NewInvalidRole reports a role id outside the known set.
func NewInvalidRole(roleID int) *Failure {
	return newFailure(KindValidation, CodeInvalidRole, "Invalid role", fmt.Sprintf("The role id: %d is not valid", roleID))
}

// NewNotFound builds <ENTITY>_NOT_FOUND for the missing key.
func NewNotFound(entity, key string) *Failure {
	code := entityCode(entity) + "_NOT_FOUND"
	return newFailure(KindNotFound, code,
		fmt.Sprintf("%s with id %s not found", titleCase(entity), key),
		fmt.Sprintf("No %s exists with the provided id: %s", strings.ToLower(entity), key))
}

// NewRouteNotFound reports an unknown transport route.
func NewRouteNotFound(method, path string) *Failure {
	return newFailure(KindNotFound, CodeRouteNotFound, "Route not found",
		fmt.Sprintf("Cannot %s %s", method, path))
}

// NewAlreadyExists builds <ENTITY>_ALREADY_EXISTS.
func NewAlreadyExists(entity, detail string) *Failure {
	code := entityCode(entity) + "_ALREADY_EXISTS"
	return newFailure(KindConflict, code, titleCase(entity)+" Already Exists", detail)
}

// NewUserNotActive reports a login attempt by a deactivated principal.
func NewUserNotActive() *Failure {
	return newFailure(KindConflict, CodeUserNotActive, "User not active", "User not active")
}

func NewTokenNotProvided() *Failure {
	return newFailure(KindAuthentication, CodeTokenNotProvided, "Token not provided", "Token has not been provided")
}

func NewInvalidToken() *Failure {
	return newFailure(KindAuthentication, CodeInvalidToken, "Token is not valid", "Provided authentication token is invalid")
}

func NewTokenExpired() *Failure {
	return newFailure(KindAuthentication, CodeTokenExpired, "Token has expired", "Provided authentication token has expired")
}

func NewInvalidCredentials() *Failure {
	return newFailure(KindAuthentication, CodeInvalidCredentials, "Invalid credentials", "Invalid email or password")
}

func NewForbidden() *Failure {
	return newFailure(KindAuthorization, CodeForbidden, "Access denied", "User does not have required permissions")
}

// NewTooManyRequests reports a throttled caller.
func NewTooManyRequests() *Failure {
	return newFailure(KindRateLimited, CodeTooManyRequests, "Too many requests", "Too many attempts, please retry later")
}

// NewExternalService wraps a failure of the authoritative source. The cause is exposed as detail.
func NewExternalService(message string, cause error) *Failure {
	f := newFailure(KindExternalService, CodeExternalService, "External service unavailable", message)
	if cause != nil {
		f.Detail = fmt.Sprintf("%s: %v", message, cause)
	}
	f.Err = cause
	return f
}

// NewStorage wraps a persistence failure.
func NewStorage(cause error) *Failure {
	f := newFailure(KindStorage, CodeStorage, "Database Operation Failed", "")
	if cause != nil {
		f.Detail = cause.Error()
	}
	f.Err = cause
	return f
}

// NewUnclassified wraps anything that escaped classification.
func NewUnclassified(cause error) *Failure {
	f := newFailure(KindUnclassified, CodeUnclassified, "An unexpected error occurred", "")
	if cause != nil {
		f.Detail = cause.Error()
	}
	f.Err = cause
	return f
}

// AsFailure extracts a classified failure from the chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// ToFailure converts generic errors to Failure.
func ToFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := AsFailure(err); ok {
		return f
	}
	return NewUnclassified(err)
}

// WrapStorage classifies a raw persistence error. Classified failures pass through unchanged.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsFailure(err); ok {
		return err
	}
	return NewStorage(err)
}

// WrapExternal classifies a raw error from an external dependency.
func WrapExternal(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsFailure(err); ok {
		return err
	}
	return NewExternalService(message, err)
}

// IsKind reports whether err carries a failure of the given kind.
func IsKind(err error, kind Kind) bool {
	f, ok := AsFailure(err)
	return ok && f.Kind == kind
}

func entityCode(entity string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(entity), " ", "_"))
}

func titleCase(entity string) string {
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return entity
	}
	return strings.ToUpper(entity[:1]) + strings.ToLower(entity[1:])
}
