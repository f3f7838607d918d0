// Package identity resolves the requesting user from bearer tokens.
// Anonymous callers are allowed, they resolve to an empty user id.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("package", "identity")

type contextKey struct{}

// Provider supplies the current requesting user id, or an empty string for
// anonymous callers.
type Provider interface {
	UserID(r *http.Request) string
}

type jwtProvider struct {
	secret []byte
}

// NewJWT creates a provider reading the user id from the subject claim of an
// HS256 bearer token.
func NewJWT(secret []byte) Provider {
	return jwtProvider{secret: secret}
}

func (p jwtProvider) UserID(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}

	token, err := jwt.Parse(
		strings.TrimPrefix(auth, "Bearer "),
		func(*jwt.Token) (interface{}, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		log.WithError(err).Debug("failed to parse bearer token")
		return ""
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}

	return sub
}

// Middleware stores the resolved user id in the request context.
func Middleware(p Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), contextKey{}, p.UserID(r)),
			))
		})
	}
}

// FromContext returns the requesting user id, empty for anonymous.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
