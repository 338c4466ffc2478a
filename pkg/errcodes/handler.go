package errcodes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// statusClientClosedRequest is reported when the client went away before a
// long request such as a scan finished.
const statusClientClosedRequest = 499

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type errorPayload struct {
	Error errorBody `json:"error"`
}

// Handle renders err as an error payload. Errors that are neither *Error nor
// *echo.HTTPError are internal server errors and get logged.
func (h *Handler) Handle(err error, c echo.Context) {
	log := logger.FromEchoContext(c)

	if errutils.IsIgnorableErr(err) {
		log.Err(err).Warn("broken pipe")
		return
	}

	body := toBody(err)
	switch {
	case body.StatusCode >= http.StatusInternalServerError:
		log.Err(err).Error("server error")
	case body.StatusCode == statusClientClosedRequest:
		log.Err(err).Warn("request canceled")
	}

	if c.Response().Committed {
		return
	}
	if err := c.JSON(body.StatusCode, errorPayload{body}); err != nil {
		log.Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func toBody(err error) errorBody {
	var e *Error
	if errors.As(err, &e) {
		return errorBody{Code: e.Code, Message: e.Message, StatusCode: e.HTTPCode}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = fmt.Sprint(he.Message)
		}
		return errorBody{Code: strcase.ToSnake(msg), Message: msg, StatusCode: he.Code}
	}

	if errors.Is(err, context.Canceled) {
		return errorBody{Code: "request_canceled", Message: "Request Canceled", StatusCode: statusClientClosedRequest}
	}

	return errorBody{Code: "internal_server_error", Message: "Internal Server Error", StatusCode: http.StatusInternalServerError}
}
