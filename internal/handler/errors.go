package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tourism-gateway/internal/model"
	"github.com/iliyamo/tourism-gateway/internal/repository"
)

// ClientError is a request refused before any statement runs (bad body,
// unknown endpoint). It maps to 400.
type ClientError struct {
	Message string
	Err     error
}

func (e *ClientError) Error() string { return e.Message }

func (e *ClientError) Unwrap() error { return e.Err }

// NotFoundError is a delete that matched no row. It maps to 404.
type NotFoundError struct {
	Entity model.Entity
}

func (e *NotFoundError) Error() string { return e.Entity.Label + " not found" }

// StatusOf classifies err into an HTTP status and the message sent to the
// client:
//
//	missing/invalid field, ClientError -> 400
//	NotFoundError                       -> 404
//	*repository.DBError                 -> 500 "Database error: <driver text>"
//	*echo.HTTPError                     -> its own code and message
//	anything else                       -> 500 "Error: <message>"
func StatusOf(err error) (int, string) {
	var (
		missing  *model.MissingFieldsError
		field    *model.FieldError
		client   *ClientError
		notFound *NotFoundError
		dbErr    *repository.DBError
		httpErr  *echo.HTTPError
	)
	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest, missing.Error()
	case errors.As(err, &field):
		return http.StatusBadRequest, field.Error()
	case errors.As(err, &client):
		return http.StatusBadRequest, client.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &dbErr):
		return http.StatusInternalServerError, "Database error: " + dbErr.Error()
	case errors.As(err, &httpErr):
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	default:
		return http.StatusInternalServerError, "Error: " + err.Error()
	}
}

// ErrorHandler renders every error returned by a handler as
// {"error": "<message>"} and logs server-side failures.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := StatusOf(err)
		if status >= http.StatusInternalServerError {
			fields := []zap.Field{zap.String("path", c.Request().URL.Path), zap.Error(err)}
			var dbErr *repository.DBError
			if errors.As(err, &dbErr) {
				fields = append(fields, zap.String("op", dbErr.Op), zap.String("table", dbErr.Table))
			}
			log.Error("request failed", fields...)
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(status)
		} else {
			sendErr = c.JSON(status, echo.Map{"error": msg})
		}
		if sendErr != nil {
			log.Warn("write error response", zap.Error(sendErr))
		}
	}
}
