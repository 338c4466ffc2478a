package errcodes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	NewHandler().Handle(err, c)
	return rec
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		expected string
	}{
		{
			name:     "typed error",
			err:      errors.WithStack(NotFound("Library")),
			status:   http.StatusNotFound,
			expected: `{"error":{"code":"not_found","message":"Library not found.","status_code":404}}`,
		},
		{
			name:     "conflict",
			err:      Conflict("A scan is already running for this library"),
			status:   http.StatusConflict,
			expected: `{"error":{"code":"conflict","message":"A scan is already running for this library","status_code":409}}`,
		},
		{
			name:     "echo error",
			err:      echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"),
			status:   http.StatusMethodNotAllowed,
			expected: `{"error":{"code":"method_not_allowed","message":"Method Not Allowed","status_code":405}}`,
		},
		{
			name:     "canceled",
			err:      errors.Wrap(context.Canceled, "scan"),
			status:   statusClientClosedRequest,
			expected: `{"error":{"code":"request_canceled","message":"Request Canceled","status_code":499}}`,
		},
		{
			name:     "generic error",
			err:      errors.New("disk on fire"),
			status:   http.StatusInternalServerError,
			expected: `{"error":{"code":"internal_server_error","message":"Internal Server Error","status_code":500}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := handle(t, tt.err)
			require.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.expected, rec.Body.String())
		})
	}
}
