package auth

import (
	"errors"
	"fmt"
	"net/http"

	"lawcase_platform/case_admin/schema"

	"github.com/go-chi/chi/v5"
)

var (
	ErrInvalidCredentials   = errors.New("invalid login credentials")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrGeneratingJwt        = errors.New("error generating jwt")
	ErrEmailAlreadyInUse    = errors.New("email is already in use")
	ErrUsernameAlreadyInUse = errors.New("username is already in use")
)

type LoginResult struct {
	AccountId   int64
	AccessToken string
}

type IdentityProvider interface {
	AuthMiddleware() chi.Middlewares

	// Login verifies credentials for the administrator or a user. A missing
	// account and a wrong password both yield ErrInvalidCredentials; which
	// factor failed is deliberately not revealed.
	Login(username, password string) (LoginResult, error)

	CreateUser(username, email, password string) (int64, error)

	ConfirmationToken(accountId int64) (string, error)

	ConfirmUser(token string) (int64, error)
}

// Requester is the authenticated caller attached to the request context. The
// administrator account has no row in the users table, so User is nil for it.
type Requester struct {
	Id      int64
	Name    string
	IsAdmin bool
	User    *schema.User
}

type requestContextKey string

const requesterContextKey requestContextKey = "requester"

func RequesterFromContext(r *http.Request) (Requester, error) {
	untyped := r.Context().Value(requesterContextKey)
	if untyped == nil {
		return Requester{}, fmt.Errorf("requester field not found in request context")
	}
	requester, ok := untyped.(Requester)
	if !ok {
		return Requester{}, fmt.Errorf("invalid value for requester field")
	}
	return requester, nil
}
