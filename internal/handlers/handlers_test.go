package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/livetone/internal/denylist"
	"github.com/nfrund/livetone/internal/validation"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func postValidate(t *testing.T, body string) (*httptest.ResponseRecorder, ValidateResponse) {
	t.Helper()
	e := newEcho()
	h := NewValidateHandler(validation.New(denylist.Default()))
	e.POST("/api/validate", h.ValidatePost)

	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp ValidateResponse
	if rec.Code == http.StatusOK || rec.Code == http.StatusUnprocessableEntity {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestValidatePost(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		wantStatus     int
		wantViolations []ViolationBody
		wantError      *ErrorBody
	}{
		{
			name:           "clean code",
			body:           `{"code":"LiveTone.setBpm(90)"}`,
			wantStatus:     http.StatusOK,
			wantViolations: []ViolationBody{},
		},
		{
			name:           "empty code is valid",
			body:           `{"code":""}`,
			wantStatus:     http.StatusOK,
			wantViolations: []ViolationBody{},
		},
		{
			name:           "single function call",
			body:           `{"code":"eval('1')"}`,
			wantStatus:     http.StatusOK,
			wantViolations: []ViolationBody{{Kind: "function_call", Keyword: "eval", Count: 1}},
			wantError:      &ErrorBody{Name: "DisallowedFunctionCallError", Message: "Calling the 'eval' is not allowed"},
		},
		{
			name:       "several violations are summarized",
			body:       `{"code":"eval('1'); new WebSocket('ws://x')"}`,
			wantStatus: http.StatusOK,
			wantViolations: []ViolationBody{
				{Kind: "function_call", Keyword: "eval", Count: 1},
				{Kind: "instance_creation", Keyword: "WebSocket", Count: 1},
			},
			wantError: &ErrorBody{Name: "ValidationError", Message: "Contains invalid codes(such as: Calling the 'eval' is not allowed)"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := postValidate(t, tc.body)

			require.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantViolations, resp.Violations)
			assert.Equal(t, tc.wantError, resp.Error)
		})
	}
}

func TestValidatePost_SyntaxError(t *testing.T) {
	rec, resp := postValidate(t, `{"code":"function ("}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SyntaxError", resp.Error.Name)
	assert.Empty(t, resp.Violations)
}

func TestValidatePost_BadRequest(t *testing.T) {
	for _, body := range []string{`{}`, `not json`} {
		rec, _ := postValidate(t, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestDenyListGet(t *testing.T) {
	deny := denylist.MustNew(denylist.Config{
		Properties: []string{"window", "document"},
		Functions:  []string{"eval"},
		Objects:    []string{"WebSocket"},
	})
	e := newEcho()
	e.GET("/api/denylist", NewDenyListHandler(deny).DenyListGet)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/denylist", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DenyListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, DenyListResponse{
		Properties: []string{"document", "window"},
		Functions:  []string{"eval"},
		Objects:    []string{"WebSocket"},
	}, resp)
}
