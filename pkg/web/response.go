// Package web defines common components for a web application.
package web

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken           string            `json:"access_token,omitempty"`
	AccessTokenExpiresAt  time.Time         `json:"access_token_expires_at,omitempty"`
	RefreshToken          string            `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt time.Time         `json:"refresh_token_expires_at,omitempty"`
	Data                  any               `json:"data,omitempty"`
	Error                 string            `json:"error,omitempty"`
	Fields                map[string]string `json:"fields,omitempty"`
}

// Error wraps a given err into a json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// ValidationError maps binding failures into a field-keyed list of problems.
func ValidationError(ve validator.ValidationErrors) Response {
	fields := make(map[string]string, len(ve))

	for _, fe := range ve {
		fields[fe.Field()] = GetErrorMsg(fe)
	}

	return Response{Error: "invalid request", Fields: fields}
}

// GetErrorMsg returns a human readable message for a failed validation tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must be at most " + fe.Param()
	case "eqfield":
		return "must match " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "datetime":
		return "must be a timestamp in " + fe.Param() + " format"
	}

	return "is invalid"
}
