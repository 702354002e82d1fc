package handlers

import (
	"errors"
	"net/http"

	"github.com/dop251/goja/parser"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/livetone/internal/middleware"
	"github.com/nfrund/livetone/internal/validation"
)

// named matches errors that carry a script-visible name.
type named interface {
	Name() string
}

// ValidateHandler exposes the static validator over HTTP.
type ValidateHandler struct {
	validator *validation.Validator
}

// NewValidateHandler creates a handler scanning with v.
func NewValidateHandler(v *validation.Validator) *ValidateHandler {
	return &ValidateHandler{validator: v}
}

// ValidatePost scans the posted code without executing it.
func (h *ValidateHandler) ValidatePost(c echo.Context) error {
	logger := middleware.FromContext(c.Request().Context())

	var req ValidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format.")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	violations, err := h.validator.Validate(*req.Code)
	if err != nil {
		var syntaxErr parser.ErrorList
		if errors.As(err, &syntaxErr) {
			logger.Info("Rejected code that does not parse", "error", err)
			return c.JSON(http.StatusUnprocessableEntity, ValidateResponse{
				Violations: []ViolationBody{},
				Error:      &ErrorBody{Name: "SyntaxError", Message: err.Error()},
			})
		}
		return err
	}

	resp := ValidateResponse{Violations: make([]ViolationBody, 0, len(violations))}
	for _, v := range violations {
		resp.Violations = append(resp.Violations, ViolationBody{Kind: v.Kind.String(), Keyword: v.Keyword, Count: v.Count})
	}
	if len(violations) > 0 {
		err := validation.SynthesizeError(violations)
		resp.Error = errorBody(err)
		logger.Info("Code contains disallowed names", "violations", len(violations), "error", err)
	}
	return c.JSON(http.StatusOK, resp)
}

func errorBody(err error) *ErrorBody {
	body := &ErrorBody{Name: "Error", Message: err.Error()}
	var n named
	if errors.As(err, &n) {
		body.Name = n.Name()
	}
	return body
}
