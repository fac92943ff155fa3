package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lawcase_platform/case_admin/auth"
	"lawcase_platform/case_admin/schema"
	"lawcase_platform/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type UserService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
	links    schema.LinkBuilder
}

func (s *UserService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Post("/signup", s.Signup)
		r.Get("/login", s.Login)
		r.Get("/confirm/{token}", s.Confirm)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/info", s.Info)
		r.Post("/profile", s.UpdateProfile)
		r.Get("/{user_id}/profile", s.PublicProfile)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.AdminOnly())

		r.Get("/list", s.List)
		r.Post("/{user_id}/disable", s.Disable)
		r.Delete("/{user_id}/disable", s.Enable)
	})

	return r
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	UserId            int64  `json:"user_id"`
	ConfirmationToken string `json:"confirmation_token"`
}

func (s *UserService) Signup(w http.ResponseWriter, r *http.Request) {
	var params signupRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Username == "" || params.Email == "" || params.Password == "" {
		http.Error(w, "username, email, and password are required", http.StatusUnprocessableEntity)
		return
	}

	userId, err := s.userAuth.CreateUser(params.Username, params.Email, params.Password)
	if err != nil {
		responseCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, auth.ErrEmailAlreadyInUse):
			responseCode = http.StatusConflict
		case errors.Is(err, auth.ErrUsernameAlreadyInUse):
			responseCode = http.StatusConflict
		}
		http.Error(w, err.Error(), responseCode)
		return
	}

	token, err := s.userAuth.ConfirmationToken(userId)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating confirmation token: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, signupResponse{UserId: userId, ConfirmationToken: token})
}

type loginResponse struct {
	AccountId   int64  `json:"account_id"`
	AccessToken string `json:"access_token"`
}

func (s *UserService) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
		return
	}

	login, err := s.userAuth.Login(username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountDisabled) {
			// Which factor failed is not revealed.
			http.Error(w, "login failed", http.StatusUnauthorized)
			return
		}
		http.Error(w, fmt.Sprintf("login failed: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, loginResponse{AccountId: login.AccountId, AccessToken: login.AccessToken})
}

func (s *UserService) Confirm(w http.ResponseWriter, r *http.Request) {
	token, err := utils.URLParam(r, "token")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	userId, err := s.userAuth.ConfirmUser(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "invalid confirmation token", http.StatusUnauthorized)
			return
		}
		http.Error(w, fmt.Sprintf("error confirming account: %v", err), domainStatus(err))
		return
	}

	utils.WriteJsonResponse(w, schema.Payload{"user_id": userId, "confirmed": true})
}

func (s *UserService) Info(w http.ResponseWriter, r *http.Request) {
	requester, err := auth.RequesterFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if requester.User == nil {
		utils.WriteJsonResponse(w, schema.Payload{
			"id":       requester.Id,
			"username": requester.Name,
			"is_admin": true,
		})
		return
	}

	utils.WriteJsonResponse(w, requester.User.FullView())
}

func (s *UserService) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	requester, err := auth.RequesterFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var payload schema.Payload
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	if payload.Has("id") {
		targetId, err := payload.Int("id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if targetId != requester.Id && !requester.IsAdmin {
			http.Error(w, "cannot edit another user's profile", http.StatusForbidden)
			return
		}
	} else {
		if requester.User == nil {
			http.Error(w, "the administrator account has no profile", http.StatusUnprocessableEntity)
			return
		}
		payload["id"] = requester.Id
	}

	user, err := schema.UserFromPayload(payload, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error updating profile: %v", err), domainStatus(err))
		return
	}

	if err := schema.SaveUser(s.db, user); err != nil {
		http.Error(w, fmt.Sprintf("error updating profile: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, user.FullView())
}

func (s *UserService) PublicProfile(w http.ResponseWriter, r *http.Request) {
	userId, err := utils.URLParamInt(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := schema.GetUser(userId, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error loading profile: %v", err), domainStatus(err))
		return
	}

	utils.WriteJsonResponse(w, user.PublicView(s.links))
}

func (s *UserService) List(w http.ResponseWriter, r *http.Request) {
	var users []schema.User
	result := s.db.Order("id").Find(&users)
	if result.Error != nil {
		slog.Error("sql error listing users", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing users: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	views := make([]schema.Payload, 0, len(users))
	for i := range users {
		views = append(views, users[i].FullView())
	}
	utils.WriteJsonResponse(w, views)
}

func (s *UserService) setDisabled(w http.ResponseWriter, r *http.Request, disabled bool) {
	userId, err := utils.URLParamInt(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if userId == schema.SystemUserId {
		http.Error(w, "the system user cannot be disabled", http.StatusUnprocessableEntity)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		user, err := schema.GetUser(userId, txn)
		if err != nil {
			return CodedError(err, domainStatus(err))
		}

		if disabled {
			now := time.Now().UTC()
			user.DisableTime = &now
		} else {
			user.DisableTime = nil
		}

		result := txn.Save(&user)
		if result.Error != nil {
			slog.Error("sql error updating user disable time", "user_id", userId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating user %v: %v", userId, err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *UserService) Disable(w http.ResponseWriter, r *http.Request) {
	s.setDisabled(w, r, true)
}

func (s *UserService) Enable(w http.ResponseWriter, r *http.Request) {
	s.setDisabled(w, r, false)
}
