package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lawcase_platform/case_admin/schema"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

const confirmationTokenTTL = 24 * time.Hour

type BasicIdentityProvider struct {
	jwtManager *JwtManager
	tokens     TokenIssuer
	db         *gorm.DB
	auditLog   AuditLogger
}

type BasicProviderArgs struct {
	Secret []byte

	AdminUsername string
	AdminPassword string
}

// NewBasicIdentityProvider provisions the administrator account and the
// sentinel system user if they do not exist yet, then serves logins for both
// account tables.
func NewBasicIdentityProvider(db *gorm.DB, auditLog AuditLogger, args BasicProviderArgs) (IdentityProvider, error) {
	err := schema.ProvisionAdministrator(db, args.AdminUsername, args.AdminPassword)
	if err != nil && !errors.Is(err, schema.ErrAlreadyProvisioned) {
		return nil, fmt.Errorf("error provisioning administrator: %w", err)
	}

	err = schema.SeedSystemUser(db, args.AdminUsername, args.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("error seeding system user: %w", err)
	}

	return &BasicIdentityProvider{
		jwtManager: NewJwtManager(args.Secret),
		tokens:     NewTokenIssuer(args.Secret),
		db:         db,
		auditLog:   auditLog,
	}, nil
}

func (auth *BasicIdentityProvider) loadRequester(accountId int64) (Requester, error) {
	if accountId == schema.AdministratorId {
		var admin schema.Administrator
		result := auth.db.First(&admin, "id = ?", accountId)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return Requester{}, schema.ErrAdministratorNotFound
			}
			slog.Error("sql error loading administrator", "error", result.Error)
			return Requester{}, schema.ErrDbAccessFailed
		}
		return Requester{Id: admin.Id, Name: admin.Username, IsAdmin: true}, nil
	}

	user, err := schema.GetUser(accountId, auth.db)
	if err != nil {
		return Requester{}, err
	}

	name := ""
	if user.Username != nil {
		name = *user.Username
	}
	return Requester{Id: user.Id, Name: name, IsAdmin: user.IsAdmin, User: &user}, nil
}

func (auth *BasicIdentityProvider) addRequesterToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			accountId, err := AccountIdFromClaims(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			requester, err := auth.loadRequester(accountId)
			if err != nil {
				if errors.Is(err, schema.ErrUserNotFound) || errors.Is(err, schema.ErrAdministratorNotFound) {
					http.Error(w, err.Error(), http.StatusNotFound)
					return
				}
				http.Error(w, fmt.Sprintf("unable to load account %v: %v", accountId, err), http.StatusInternalServerError)
				return
			}

			if requester.User != nil && requester.User.DisableTime != nil {
				http.Error(w, ErrAccountDisabled.Error(), http.StatusForbidden)
				return
			}

			reqCtx := context.WithValue(r.Context(), requesterContextKey, requester)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		}

		return http.HandlerFunc(handler)
	}
}

func (auth *BasicIdentityProvider) AuthMiddleware() chi.Middlewares {
	return chi.Middlewares{auth.jwtManager.Verifier(), auth.jwtManager.Authenticator(), auth.addRequesterToContext(), auth.auditLog.Middleware}
}

func (auth *BasicIdentityProvider) Login(username, password string) (LoginResult, error) {
	admin, err := schema.GetAdministrator(username, auth.db)
	if err == nil {
		if !schema.VerifyPassword(admin.PasswordHash, password) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return auth.issueSession(admin.Id)
	}
	if !errors.Is(err, schema.ErrAdministratorNotFound) {
		return LoginResult{}, err
	}

	user, err := schema.GetUserByUsername(username, auth.db)
	if err != nil {
		if errors.Is(err, schema.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if user.DisableTime != nil {
		return LoginResult{}, ErrAccountDisabled
	}
	if !schema.VerifyPassword(user.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	return auth.issueSession(user.Id)
}

func (auth *BasicIdentityProvider) issueSession(accountId int64) (LoginResult, error) {
	token, err := auth.jwtManager.CreateSessionJwt(accountId)
	if err != nil {
		return LoginResult{}, ErrGeneratingJwt
	}
	return LoginResult{AccountId: accountId, AccessToken: token}, nil
}

func (auth *BasicIdentityProvider) CreateUser(username, email, password string) (int64, error) {
	hash, err := schema.HashPassword(password)
	if err != nil {
		return 0, err
	}

	avatar := schema.AvatarHash(email)
	newUser := schema.User{
		Username:     &username,
		Email:        &email,
		PasswordHash: hash,
		AvatarHash:   &avatar,
	}

	err = auth.db.Transaction(func(txn *gorm.DB) error {
		var existingUser schema.User
		result := txn.Limit(1).Find(&existingUser, "username = ? or email = ?", username, email)
		if result.Error != nil {
			slog.Error("sql error checking for existing username/email", "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if result.RowsAffected != 0 {
			if existingUser.Username != nil && *existingUser.Username == username {
				return ErrUsernameAlreadyInUse
			}
			return ErrEmailAlreadyInUse
		}

		newUser.Id, err = schema.NextUserId(txn)
		if err != nil {
			return err
		}

		result = txn.Create(&newUser)
		if result.Error != nil {
			slog.Error("sql error creating new user entry", "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("error creating new user: %w", err)
	}

	return newUser.Id, nil
}

func (auth *BasicIdentityProvider) ConfirmationToken(accountId int64) (string, error) {
	return auth.tokens.Generate(accountId, confirmationTokenTTL)
}

func (auth *BasicIdentityProvider) ConfirmUser(token string) (int64, error) {
	accountId, ok := auth.tokens.Resolve(token)
	if !ok {
		return 0, ErrInvalidCredentials
	}

	user, err := schema.GetUser(accountId, auth.db)
	if err != nil {
		return 0, err
	}

	user.Confirmed = true
	if err := schema.SaveUser(auth.db, &user); err != nil {
		return 0, err
	}
	return user.Id, nil
}
