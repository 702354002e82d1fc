package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ValidateRequest defines the DTO for the validation endpoint. Code is a
// pointer so a missing field is told apart from an empty script.
type ValidateRequest struct {
	Code *string `json:"code" validate:"required,max=262144"`
}

// ErrorBody is the JSON form of a script-visible error.
type ErrorBody struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ValidateResponse lists the violations found and the single error the
// execution gate would raise for them. Error is null for a clean script.
type ValidateResponse struct {
	Violations []ViolationBody `json:"violations"`
	Error      *ErrorBody      `json:"error"`
}

// ViolationBody is one finding of a scan.
type ViolationBody struct {
	Kind    string `json:"kind"`
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// DenyListResponse is the effective deny-list.
type DenyListResponse struct {
	Properties []string `json:"properties"`
	Functions  []string `json:"functions"`
	Objects    []string `json:"objects"`
}
