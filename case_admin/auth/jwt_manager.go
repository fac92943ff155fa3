package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

type JwtManager struct {
	auth *jwtauth.JWTAuth
}

func NewJwtManager(secret []byte) *JwtManager {
	return &JwtManager{auth: jwtauth.New("HS256", secret, nil)}
}

func (m *JwtManager) Verifier() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verifier(m.auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}))
	}
}

func (m *JwtManager) Authenticator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Authenticator(m.auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}))
	}
}

const accountIdKey = "account_id"

const sessionDuration = 15 * time.Minute

func (m *JwtManager) CreateSessionJwt(accountId int64) (string, error) {
	claims := map[string]interface{}{
		accountIdKey: strconv.FormatInt(accountId, 10),
		"exp":        time.Now().Add(sessionDuration),
	}
	_, token, err := m.auth.Encode(claims)
	if err != nil {
		slog.Error("error generating jwt", "error", err)
		return "", fmt.Errorf("error generating access token: %w", err)
	}
	return token, nil
}

func AccountIdFromClaims(r *http.Request) (int64, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, fmt.Errorf("error retrieving auth claims: %w", err)
	}

	valueUncasted, ok := claims[accountIdKey]
	if !ok {
		return 0, fmt.Errorf("invalid token: unable to locate key %v in claims", accountIdKey)
	}

	value, ok := valueUncasted.(string)
	if !ok {
		return 0, fmt.Errorf("invalid token: value for key %v has invalid type", accountIdKey)
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account id '%v' in token: %w", value, err)
	}

	return id, nil
}
