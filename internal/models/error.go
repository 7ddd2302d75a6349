package models

// Codes carried in APIError.Code.
const (
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
	ErrConflict         = "CONFLICT"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrInvalidPage      = "INVALID_PAGE"
	ErrTooManyRequests  = "TOO_MANY_REQUESTS"

	ErrRecipeNoIngredients = "RECIPE_NO_INGREDIENTS"
	ErrInvalidImage        = "INVALID_IMAGE"
)

// Error values of RFC 6749 section 5.2 and RFC 6750 section 3.1. They are
// lower case on the wire.
const (
	ErrInvalidRequest       = "invalid_request"
	ErrInvalidClient        = "invalid_client"
	ErrInvalidGrant         = "invalid_grant"
	ErrUnauthorizedClient   = "unauthorized_client"
	ErrUnsupportedGrantType = "unsupported_grant_type"
	ErrInvalidToken         = "invalid_token"
)

// APIError is the body of every non-OAuth error response.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewAPIError builds an APIError. At most one details map is used.
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	apiErr := APIError{Code: code, Message: message}
	for _, d := range details {
		if len(d) > 0 {
			apiErr.Details = d
			break
		}
	}
	return apiErr
}

// OAuth2Error is the error body of the token and authorize endpoints.
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

func NewOAuth2Error(code, description string) OAuth2Error {
	return OAuth2Error{Error: code, ErrorDescription: description}
}
