// Package envelope writes every API response in the uniform
// {success, data|error} wrapper and maps domain errors onto HTTP statuses.
package envelope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/ichigozero/tasktracker/authsvc"
	"github.com/ichigozero/tasktracker/tasksvc"
	"github.com/ichigozero/tasktracker/usersvc"
	"github.com/ichigozero/tasktracker/validation"
)

const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeConflict         = "CONFLICT"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternal         = "INTERNAL_ERROR"
)

// Payloader is implemented by endpoint responses; Payload is placed under
// the envelope's data key.
type Payloader interface {
	Payload() interface{}
}

type success struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type failure struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// Encoder encodes go-kit responses and errors. Development exposes the
// message and stack trace of internal errors.
type Encoder struct {
	Development bool
}

// EncodeResponse is a transport/http.EncodeResponseFunc. Responses that
// failed are handed to EncodeError.
func (e Encoder) EncodeResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(interface{ Failed() error }); ok && f.Failed() != nil {
		e.EncodeError(ctx, f.Failed(), w)
		return nil
	}

	code := http.StatusOK
	if sc, ok := response.(httptransport.StatusCoder); ok {
		code = sc.StatusCode()
	}
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return nil
	}

	body := success{Success: true}
	if p, ok := response.(Payloader); ok {
		body.Data = p.Payload()
	} else {
		body.Data = response
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(body)
}

// EncodeError is a transport/http.ErrorEncoder.
func (e Encoder) EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	status, code := Code(err)
	body := failure{Error: Error{Code: code, Message: err.Error()}}

	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		body.Error.Message = verr.Message
		if len(verr.Fields) > 0 {
			body.Error.Details = verr.Fields
		}
	case status == http.StatusInternalServerError && !e.Development:
		body.Error.Message = "internal server error"
	case status == http.StatusInternalServerError:
		body.Error.Details = map[string]string{"stack": fmt.Sprintf("%+v", err)}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Code maps an error onto its HTTP status and envelope code.
func Code(err error) (int, string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr),
		errors.Is(err, tasksvc.ErrInvalidArgument),
		errors.Is(err, usersvc.ErrInvalidArgument):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, authsvc.ErrCredentialMissing),
		errors.Is(err, authsvc.ErrCredentialMalformed),
		errors.Is(err, authsvc.ErrUnknownUser):
		return http.StatusUnauthorized, CodeUnauthenticated
	case errors.Is(err, tasksvc.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, tasksvc.ErrTaskNotFound),
		errors.Is(err, usersvc.ErrUserNotFound),
		errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, usersvc.ErrEmailTaken):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, CodeMethodNotAllowed
	}

	var rerr *RemoteError
	if errors.As(err, &rerr) {
		return rerr.Status, rerr.Code
	}
	return http.StatusInternalServerError, CodeInternal
}

// NotFoundHandler answers unmatched routes with a NOT_FOUND envelope.
func (e Encoder) NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.EncodeError(r.Context(), ErrRouteNotFound, w)
	})
}

// MethodNotAllowedHandler answers known routes hit with the wrong method.
func (e Encoder) MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.EncodeError(r.Context(), ErrMethodNotAllowed, w)
	})
}
