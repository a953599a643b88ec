package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"

	"github.com/rbroggi/studyhub/internal/core/model"
)

const (
	statusOK    = "OK"
	statusError = "Error"
)

// envelope is the uniform JSON body of every response.
type envelope struct {
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

func writeData(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	render.Status(r, code)
	render.JSON(w, r, envelope{Status: statusOK, Data: data})
}

func writeOK(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, nil)
}

// writeError maps the typed core errors onto HTTP status codes. Anything unrecognized
// is a 500 with a generic message so that internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *model.ValidationError

	code := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.As(err, &validationErr):
		code = http.StatusBadRequest
		msg = fmt.Sprintf("field %s %s", validationErr.Field, validationErr.Reason)
	case errors.Is(err, model.ErrNotFound):
		code = http.StatusNotFound
		msg = "not found"
	case errors.Is(err, model.ErrTokenMismatch):
		code = http.StatusUnauthorized
		msg = "invalid or expired token"
	case errors.Is(err, model.ErrAccessDenied):
		code = http.StatusForbidden
		msg = "access denied"
	case errors.Is(err, model.ErrCooldownActive):
		code = http.StatusTooManyRequests
		msg = "please wait before retrying"
	case errors.Is(err, model.ErrInvalidStateTransition):
		code = http.StatusConflict
		msg = "operation not allowed in the current state"
	case errors.Is(err, model.ErrNotificationFailed):
		code = http.StatusBadGateway
		msg = "could not deliver the notification mail"
	default:
		log.WithError(err).Error("unhandled error in http handler")
	}

	render.Status(r, code)
	render.JSON(w, r, envelope{Status: statusError, Error: msg})
}
