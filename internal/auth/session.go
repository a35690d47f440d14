package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aescanero/basecamp/internal/config"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "basecamp_session"

// SessionManager issues, reads and clears session cookies.
type SessionManager struct {
	signer *signer
	maxAge int
	secure bool
}

// NewSessionManager creates a session manager from the auth view. Cookies are
// marked Secure unless the service runs in development or test.
func NewSessionManager(view config.AuthView, env config.Env) *SessionManager {
	return &SessionManager{
		signer: newSigner(view.SessionSecret, useSession),
		maxAge: view.SessionMaxAge,
		secure: !env.IsDevelopment() && !env.IsTest(),
	}
}

// MaxAge returns the session lifetime.
func (m *SessionManager) MaxAge() time.Duration {
	return time.Duration(m.maxAge) * time.Second
}

// Issue starts a session for subject by setting the session cookie.
func (m *SessionManager) Issue(c *gin.Context, subject string) error {
	token, err := m.signer.generate(subject, m.MaxAge())
	if err != nil {
		return fmt.Errorf("failed to issue session: %w", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, m.maxAge, "/", "", m.secure, true)
	return nil
}

// Read returns the subject of the request's session cookie.
func (m *SessionManager) Read(c *gin.Context) (string, error) {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return "", fmt.Errorf("%w: no session cookie", ErrInvalidToken)
	}
	return m.signer.verify(token)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.secure, true)
}
