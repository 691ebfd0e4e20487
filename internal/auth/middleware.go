package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"pathfinder/internal/apierr"
	"pathfinder/internal/httpx"
	"pathfinder/pkg/logger"
)

const CtxClaimsKey = "auth_claims"

var (
	ErrMissingToken = apierr.Unauthorized("Unauthorized")
	ErrInvalidToken = apierr.Unauthorized("Unauthorized")
	ErrTokenRevoked = apierr.Unauthorized("Unauthorized")
)

// AuthMiddleware rejects requests without a valid bearer token before any
// handler touches the store. A token whose user row is gone gets 404; a
// failed version lookup gets a bare 500.
func AuthMiddleware(tokens TokenService, repo *Repo, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, tokens, repo)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// OptionalMiddleware attaches claims when a valid token is present and lets
// every other request through anonymously.
func OptionalMiddleware(tokens TokenService, repo *Repo, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		claims, err := authenticate(c, tokens, repo)
		switch {
		case err == nil:
			c.Set(CtxClaimsKey, claims)
		case apierr.StatusOf(err) >= 500:
			log.Warn("optional auth lookup failed", "error", err)
		}
		c.Next()
	}
}

// WSIdentity resolves the user behind a websocket upgrade. Browsers cannot set
// headers on the handshake, so a token query parameter is accepted too.
func WSIdentity(tokens TokenService, repo *Repo) func(c *gin.Context) (string, bool) {
	return func(c *gin.Context) (string, bool) {
		raw := strings.TrimSpace(c.Query("token"))
		if raw == "" {
			var ok bool
			if raw, ok = BearerToken(c.GetHeader("Authorization")); !ok {
				return "", false
			}
		}
		claims, err := verify(c.Request.Context(), tokens, repo, raw)
		if err != nil {
			return "", false
		}
		return claims.UserID, true
	}
}

func authenticate(c *gin.Context, tokens TokenService, repo *Repo) (*Claims, error) {
	raw, ok := BearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil, ErrMissingToken
	}
	return verify(c.Request.Context(), tokens, repo, raw)
}

// verify parses raw and checks its version against the stored one. Errors
// carry their HTTP status: 401 for bad or revoked tokens, 404 for a missing
// user, 500 for store failures.
func verify(ctx context.Context, tokens TokenService, repo *Repo, raw string) (*Claims, error) {
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if repo == nil {
		return claims, nil
	}

	current, err := repo.GetTokenVersion(ctx, claims.UserID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, err
	case err != nil:
		return nil, apierr.Upstream("check token version", err)
	case current != claims.TokenVersion:
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	return raw, raw != ""
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
