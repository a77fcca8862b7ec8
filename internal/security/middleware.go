package security

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fleet-auth-server/internal/metrics"
	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/ports"
	"fleet-auth-server/internal/util"
)

type contextKey string

const (
	IdentityContextKey contextKey = "identity"
	APIKeyHeader                  = "X-API-Key"
)

const (
	msgNoToken       = "no token"
	msgInvalidToken  = "invalid or expired"
	msgInvalidAPIKey = "invalid api key"
	msgForbidden     = "forbidden"
	msgNotAuthorized = "not authenticated"
)

var ErrNoIdentity = errors.New("пользователь не авторизован")

// Authenticator : единая точка аутентификации входящих запросов.
// Публичные пути задаются явно при создании, для них проверки не выполняются.
// API ключ и bearer токен взаимоисключающие: при наличии X-API-Key токен не проверяется.
type Authenticator struct {
	tokens   ports.SessionValidator
	apiKeys  ports.APIKeyValidator
	public   map[string]struct{}
	prefixes []string
}

func NewAuthenticator(tokens ports.SessionValidator, apiKeys ports.APIKeyValidator, publicPaths ...string) *Authenticator {
	a := &Authenticator{
		tokens:  tokens,
		apiKeys: apiKeys,
		public:  make(map[string]struct{}, len(publicPaths)),
	}
	for _, p := range publicPaths {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			a.prefixes = append(a.prefixes, prefix)
			continue
		}
		a.public[p] = struct{}{}
	}
	return a
}

// IsPublic : путь явно помечен публичным (точное совпадение или префикс с "*")
func (a *Authenticator) IsPublic(r *http.Request) bool {
	if _, ok := a.public[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range a.prefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.IsPublic(r) {
			next.ServeHTTP(w, r)
			return
		}

		if rawKey := r.Header.Get(APIKeyHeader); rawKey != "" {
			a.authenticateAPIKey(w, r, rawKey, next)
			return
		}

		token := BearerToken(r)
		if token == "" {
			metrics.AuthRequestsTotal.WithLabelValues(string(model.AuthMethodBearer), "no_token").Inc()
			util.HandleError(w, msgNoToken, http.StatusUnauthorized)
			return
		}

		user := a.tokens.ValidateSession(r.Context(), token)
		if user == nil || user.TokenType != model.AccessToken {
			metrics.AuthRequestsTotal.WithLabelValues(string(model.AuthMethodBearer), "invalid").Inc()
			util.HandleError(w, msgInvalidToken, http.StatusUnauthorized)
			return
		}

		metrics.AuthRequestsTotal.WithLabelValues(string(model.AuthMethodBearer), "ok").Inc()
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), model.IdentityFromSession(user))))
	})
}

func (a *Authenticator) authenticateAPIKey(w http.ResponseWriter, r *http.Request, rawKey string, next http.Handler) {
	key, status := a.apiKeys.Validate(r.Context(), rawKey)
	metrics.AuthRequestsTotal.WithLabelValues(string(model.AuthMethodAPIKey), status.String()).Inc()

	if status != model.APIKeyValid || key == nil {
		util.Logger.Info().
			Str("status", status.String()).
			Str("remote_addr", r.RemoteAddr).
			Str("path", r.URL.Path).
			Msg("[Authenticator] API ключ отклонён")
		util.HandleError(w, msgInvalidAPIKey, http.StatusUnauthorized)
		return
	}

	next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), model.IdentityFromAPIKey(key))))
}

// BearerToken : токен из заголовка Authorization или пустая строка
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (*model.Identity, error) {
	identity, ok := ctx.Value(IdentityContextKey).(*model.Identity)
	if !ok || identity == nil {
		return nil, ErrNoIdentity
	}
	return identity, nil
}

// RequireAdmin : 403 для всех, кроме администраторов
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := IdentityFromContext(r.Context())
		if err != nil {
			util.HandleError(w, msgNotAuthorized, http.StatusUnauthorized)
			return
		}
		if !identity.Admin() {
			util.HandleError(w, msgForbidden, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission : администратор или API ключ с нужным permission
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromContext(r.Context())
			if err != nil {
				util.HandleError(w, msgNotAuthorized, http.StatusUnauthorized)
				return
			}
			if !identity.Admin() && !identity.HasPermission(permission) {
				util.HandleError(w, msgForbidden, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
