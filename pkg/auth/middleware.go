package auth

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/medtrace/pkg/httpx"
	"github.com/ghuser/medtrace/pkg/logger"
)

const (
	sessionName     = "medtrace_session"
	sessionEmailKey = "email"
	sessionRoleKey  = "role"
)

var errNoIdentity = errors.New("session carries no identity")

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the caller's email and role, and injects
// them into the request context. Returns 401 Unauthorized if the session is
// missing, invalid, or incomplete.
//
// After this middleware, handlers can safely call auth.IdentityFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := readIdentity(store, r)
			if err != nil {
				log.WarnContext(r.Context(), "unauthenticated request", "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the caller's identity when a valid session exists and
// otherwise lets the request through anonymously. Used by endpoints open to
// the public, such as code verification.
func OptionalAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := readIdentity(store, r)
			if err != nil {
				log.DebugContext(r.Context(), "anonymous request", "reason", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// SaveIdentity stores id in the caller's session and writes the cookie.
func SaveIdentity(store sessions.Store, w http.ResponseWriter, r *http.Request, id Identity) error {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return err
	}
	session.Values[sessionEmailKey] = id.Email
	session.Values[sessionRoleKey] = id.Role
	return session.Save(r, w)
}

func readIdentity(store sessions.Store, r *http.Request) (Identity, error) {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return Identity{}, err
	}
	email, _ := session.Values[sessionEmailKey].(string)
	role, _ := session.Values[sessionRoleKey].(string)
	if email == "" || role == "" {
		return Identity{}, errNoIdentity
	}
	return Identity{Email: email, Role: role}, nil
}
