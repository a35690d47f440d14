// Package auth provides token and session authentication for the API.
//
// Two credentials are accepted:
//
//   - Access tokens: HS256 JWTs signed with JWT_SECRET, valid for
//     JWT_EXPIRES_IN, sent as "Authorization: Bearer <token>".
//   - Sessions: HS256 JWTs signed with SESSION_SECRET, valid for
//     SESSION_MAX_AGE seconds, stored in an HttpOnly cookie.
//
// Both carry a "use" claim so that a token of one kind is never accepted as
// the other, even when the two secrets are equal.
//
// RequireAuth is the gin middleware that checks either credential and
// stores the authenticated subject on the request context:
//
//	api.GET("/me", auth.RequireAuth(tokens, sessions), handler)
//	subject := auth.Subject(c)
package auth
