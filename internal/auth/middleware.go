package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const subjectKey = "auth.subject"

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// RequireAuth rejects requests that carry neither a valid bearer token nor a
// valid session cookie. A present but invalid Authorization header is
// rejected without falling back to the cookie.
func RequireAuth(tokens *TokenIssuer, sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		if header != "" {
			token, errMsg := extractBearerToken(header)
			if errMsg != "" {
				unauthorized(c, errMsg)
				return
			}

			subject, err := tokens.Verify(token)
			if err != nil {
				unauthorized(c, tokenErrorMessage(err))
				return
			}

			c.Set(subjectKey, subject)
			c.Next()
			return
		}

		if sessions != nil {
			if subject, err := sessions.Read(c); err == nil {
				c.Set(subjectKey, subject)
				c.Next()
				return
			}
		}

		unauthorized(c, "authentication required")
	}
}

// Subject returns the authenticated subject, or "" outside RequireAuth.
func Subject(c *gin.Context) string {
	return c.GetString(subjectKey)
}

func tokenErrorMessage(err error) string {
	if errors.Is(err, ErrExpiredToken) {
		return "token expired"
	}
	return "invalid token"
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      true,
		"message":    message,
		"statusCode": http.StatusUnauthorized,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
