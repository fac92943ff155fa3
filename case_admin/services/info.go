package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"lawcase_platform/case_admin/auth"
	"lawcase_platform/case_admin/schema"
	"lawcase_platform/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type InfoService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *InfoService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/list", s.List)
		r.Post("/{info_id}/read", s.MarkRead)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.SelfOrAdminOnly(func(r *http.Request) (int64, error) {
			return utils.URLParamInt(r, "user_id")
		}))

		r.Get("/{user_id}/list", s.ListFor)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.AdminOnly())

		r.Post("/send", s.Send)
	})

	return r
}

func (s *InfoService) listInbox(w http.ResponseWriter, userId int64) {
	var infos []schema.Info
	result := s.db.Order("is_read, timestamp desc").Find(&infos, "user_id = ?", userId)
	if result.Error != nil {
		slog.Error("sql error listing infos", "user_id", userId, "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing notifications: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	views := make([]schema.Payload, 0, len(infos))
	for i := range infos {
		views = append(views, infos[i].View())
	}
	utils.WriteJsonResponse(w, views)
}

// List returns the requester's inbox, unread first.
func (s *InfoService) List(w http.ResponseWriter, r *http.Request) {
	requester, err := auth.RequesterFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.listInbox(w, requester.Id)
}

// ListFor returns a specific user's inbox. Guarded so only that user or an
// admin may call it.
func (s *InfoService) ListFor(w http.ResponseWriter, r *http.Request) {
	userId, err := utils.URLParamInt(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.listInbox(w, userId)
}

func (s *InfoService) MarkRead(w http.ResponseWriter, r *http.Request) {
	requester, err := auth.RequesterFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	infoId, err := utils.URLParamInt(r, "info_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := schema.GetInfo(infoId, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error loading notification: %v", err), domainStatus(err))
		return
	}

	if info.UserId != requester.Id && !requester.IsAdmin {
		http.Error(w, "cannot read another user's notifications", http.StatusForbidden)
		return
	}

	if err := schema.MarkInfoRead(s.db, infoId); err != nil {
		http.Error(w, fmt.Sprintf("error marking notification read: %v", err), domainStatus(err))
		return
	}

	utils.WriteSuccess(w)
}

type sendInfoRequest struct {
	UserId  int64  `json:"user_id"`
	Message string `json:"message"`
}

func (s *InfoService) Send(w http.ResponseWriter, r *http.Request) {
	var params sendInfoRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if _, err := schema.GetUser(params.UserId, s.db); err != nil {
		if errors.Is(err, schema.ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("error sending notification: %v", err), http.StatusInternalServerError)
		return
	}

	info, err := schema.CreateInfo(s.db, params.UserId, params.Message)
	if err != nil {
		http.Error(w, fmt.Sprintf("error sending notification: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, info.View())
}
