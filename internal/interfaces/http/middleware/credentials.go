package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"github.com/heoquay/backend/internal/interfaces/http/dto"
)

// Inbound header names
const (
	AuthHeaderKey = "Authorization"
	RoleHeaderKey = "X-Role"
)

// UsernameKey is the gin context key of the username read from the token
const UsernameKey = "username"

// usernameClaims are the claims the webhook API has put the user name in
var usernameClaims = []string{"userName", "username", "preferred_username", "name", "sub"}

// Credentials moves the caller's bearer token and role into the request
// context so the upstream client can forward them. Nothing is checked here:
// the webhook API decides what the token is worth. roleHeader is looked up
// before the X-Role and role aliases.
func Credentials(roleHeader string) gin.HandlerFunc {
	headers := []string{RoleHeaderKey, "role"}
	if roleHeader != "" {
		headers = append([]string{roleHeader}, headers...)
	}

	return func(c *gin.Context) {
		creds := upstream.Credentials{
			Token: upstream.BearerToken(c.GetHeader(AuthHeaderKey)),
		}
		for _, h := range headers {
			if v := strings.TrimSpace(c.GetHeader(h)); v != "" {
				creds.Role = v
				break
			}
		}

		ctx := upstream.WithCredentials(c.Request.Context(), creds)
		if name := TokenUsername(creds.Token); name != "" {
			c.Set(UsernameKey, name)
			ctx = logger.WithUsername(ctx, name)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireToken answers 401 when the caller sent no bearer token. It guards
// routes that serve data fetched with the service credentials, and must run
// after Credentials.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if upstream.CredentialsFromContext(c.Request.Context()).Token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.MsgUnauthorized, GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// TokenUsername reads the user name out of a JWT without verifying it.
// It is only used to label logs and spans; opaque tokens yield "".
func TokenUsername(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range usernameClaims {
		if name, ok := claims[key].(string); ok && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	return ""
}
