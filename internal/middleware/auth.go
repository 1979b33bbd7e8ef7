// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/auth"
	"github.com/carterperez-dev/stackit/internal/core"
)

type contextKey string

const (
	ActorKey     contextKey = "actor"
	PrincipalKey contextKey = "principal"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Principal, error)
}

// ActorResolver maps a verified principal to the local user it acts as.
type ActorResolver interface {
	ResolvePrincipal(ctx context.Context, p auth.Principal) (access.Actor, error)
}

func Authenticator(
	verifier TokenVerifier,
	resolver ActorResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			principal, err := verifier.Verify(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			actor, err := resolver.ResolvePrincipal(r.Context(), *principal)
			if err != nil {
				core.Fail(w, err, "user")
				return
			}

			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), principal, actor)))
		})
	}
}

// OptionalAuth attaches an actor when a valid token is present and lets
// the request through as a guest otherwise.
func OptionalAuth(
	verifier TokenVerifier,
	resolver ActorResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token != "" {
				principal, err := verifier.Verify(r.Context(), token)
				if err == nil {
					actor, resolveErr := resolver.ResolvePrincipal(r.Context(), *principal)
					if resolveErr == nil {
						r = r.WithContext(withActor(r.Context(), principal, actor))
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequirePermission(perm access.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if !actor.Can(perm) {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		if !ok {
			core.JSONError(w, core.UnauthorizedError("authentication required"))
			return
		}
		if !actor.IsAdmin() {
			core.JSONError(w, core.ForbiddenError("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractToken reads a bearer token from the Authorization header. Browsers
// cannot set headers on websocket upgrades, so those may pass access_token
// as a query parameter instead.
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			return strings.TrimSpace(r.URL.Query().Get("access_token"))
		}
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func withActor(
	ctx context.Context,
	principal *auth.Principal,
	actor access.Actor,
) context.Context {
	ctx = context.WithValue(ctx, PrincipalKey, principal)
	return WithActor(ctx, actor)
}

// WithActor stores actor on ctx. Handlers and tests use it to act as a
// user without a token.
func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

func GetActor(ctx context.Context) (access.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(access.Actor)
	return actor, ok
}

// ActorOrGuest returns the request actor, or an anonymous guest.
func ActorOrGuest(ctx context.Context) access.Actor {
	if actor, ok := GetActor(ctx); ok {
		return actor
	}
	return access.Actor{Role: access.RoleGuest}
}

func GetUserID(ctx context.Context) string {
	if actor, ok := GetActor(ctx); ok {
		return actor.UserID
	}
	return ""
}

func GetPrincipal(ctx context.Context) *auth.Principal {
	if p, ok := ctx.Value(PrincipalKey).(*auth.Principal); ok {
		return p
	}
	return nil
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}
