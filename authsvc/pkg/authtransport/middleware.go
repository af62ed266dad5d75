package authtransport

import (
	"context"
	"net/http"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ichigozero/tasktracker/authsvc"
	"github.com/ichigozero/tasktracker/authsvc/pkg/authservice"
	"github.com/ichigozero/tasktracker/envelope"
)

// Credential returns the caller identifier carried by r: the x-user-id
// header, or the userId query parameter when the header is absent.
func Credential(r *http.Request) string {
	if v := r.Header.Get(authsvc.CredentialHeader); v != "" {
		return v
	}
	return r.URL.Query().Get(authsvc.CredentialQueryParam)
}

// NewAuthenticater resolves the caller before the wrapped handler runs and
// stores the caller's ID under authsvc.UserIDContextKey. Failures are
// answered with an UNAUTHENTICATED envelope and never reach the handler.
func NewAuthenticater(svc authservice.Service, enc envelope.Encoder) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := svc.Resolve(r.Context(), Credential(r))
			if err != nil {
				enc.EncodeError(r.Context(), err, w)
				return
			}

			ctx := context.WithValue(r.Context(), authsvc.UserIDContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextToHTTP copies the caller ID from the context into the x-user-id
// header of outgoing client requests.
func ContextToHTTP() httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		if id, ok := ctx.Value(authsvc.UserIDContextKey).(uuid.UUID); ok {
			r.Header.Set(authsvc.CredentialHeader, id.String())
		}
		return ctx
	}
}
