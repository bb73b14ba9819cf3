package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/accident-recon-api/config"
	"github.com/linesmerrill/accident-recon-api/investigation"
	"github.com/linesmerrill/accident-recon-api/models"
)

// Authenticator checks a user's credentials. CheckActive is asked on every
// request, because cached credentials and bearer tokens skip Authenticate.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	CheckActive(ctx context.Context, id string) error
}

// Guard authenticates API requests with basic credentials or a bearer token
// issued by CreateToken
type Guard struct {
	users         Authenticator
	authenticator auth.Authenticator
}

type userIDKey struct{}

// NewGuard sets up go-guardian with a basic strategy backed by users and a
// cached bearer strategy whose tokens live for tokenTTL
func NewGuard(users Authenticator, tokenTTL time.Duration) *Guard {
	g := &Guard{users: users}
	cache := store.NewFIFO(context.Background(), tokenTTL)
	basicStrategy := basic.New(g.validateUser, cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)

	g.authenticator = auth.New()
	g.authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	g.authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
	return g
}

// Middleware rejects requests without valid credentials and makes the caller's
// user id available through UserID
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := g.authenticator.Authenticate(r)
		if err != nil {
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, errors.New("missing or invalid credentials"))
			return
		}
		ctx, cancel := WithQueryTimeout(r.Context())
		err = g.users.CheckActive(ctx, user.ID())
		cancel()
		if err != nil {
			zap.S().Debugw("rejected credentials of unusable account", "userID", user.ID(), "error", err)
			config.ErrorStatus("unauthorized", AuthStatus(err), w, err)
			return
		}
		zap.S().Debugw("user authenticated", "email", user.UserName(), "url", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, user.ID())))
	})
}

// UserID returns the id of the authenticated caller, or "" outside Middleware
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// CreateToken exchanges basic credentials for a bearer token
func (g *Guard) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	email, password, ok := r.BasicAuth()
	if !ok {
		config.ErrorStatus("basic auth failed", http.StatusUnauthorized, w, errors.New("missing basic credentials"))
		return
	}

	ctx, cancel := WithQueryTimeout(r.Context())
	defer cancel()
	user, err := g.users.Authenticate(ctx, email, password)
	if err != nil {
		config.ErrorStatus("failed to authenticate", AuthStatus(err), w, err)
		return
	}

	token := uuid.New().String()
	tokenStrategy := g.authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, userInfo(user), r)

	b, err := json.Marshal(map[string]string{
		"token": token,
		"_id":   user.ID,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// RevokeToken revokes the bearer token of the request
func (g *Guard) RevokeToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if token == "" || token == r.Header.Get("Authorization") {
		config.ErrorStatus("failed to revoke token", http.StatusBadRequest, w, errors.New("no bearer token"))
		return
	}

	tokenStrategy := g.authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, token, r)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"revoked": true}`))
}

func (g *Guard) validateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	user, err := g.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return userInfo(user), nil
}

func userInfo(u models.User) auth.Info {
	return auth.NewDefaultUser(u.Email, u.ID, []string{string(u.Role)}, nil)
}

// AuthStatus maps a login failure onto its HTTP status
func AuthStatus(err error) int {
	switch {
	case errors.Is(err, investigation.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, investigation.ErrAccountLocked):
		return http.StatusLocked
	case errors.Is(err, investigation.ErrAccountInactive):
		return http.StatusForbidden
	}
	return config.StatusFor(err)
}
