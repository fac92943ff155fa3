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
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *CommentService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/case/{case_num}", s.ListByCase)
		r.Get("/{comment_num}", s.Get)
		r.Post("/create", s.Create)
		r.Post("/import", s.Import)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.AdminOnly())

		r.Delete("/{comment_num}", s.Delete)
	})

	return r
}

func (s *CommentService) Get(w http.ResponseWriter, r *http.Request) {
	commentNum, err := utils.URLParam(r, "comment_num")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := schema.GetComment(commentNum, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error loading comment: %v", err), domainStatus(err))
		return
	}

	utils.WriteJsonResponse(w, c.View())
}

func (s *CommentService) ListByCase(w http.ResponseWriter, r *http.Request) {
	caseNum, err := utils.URLParam(r, "case_num")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var comments []schema.Comment
	result := s.db.Order("comment_num").Find(&comments, "low_case_num = ?", caseNum)
	if result.Error != nil {
		slog.Error("sql error listing comments", "case_num", caseNum, "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing comments: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	views := make([]schema.Payload, 0, len(comments))
	for i := range comments {
		views = append(views, comments[i].View())
	}
	utils.WriteJsonResponse(w, views)
}

// Create attaches a new annotation. A comment number is generated when the
// payload does not carry one; the annotation target must resolve.
func (s *CommentService) Create(w http.ResponseWriter, r *http.Request) {
	var payload schema.Payload
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	commentNum, ok := payload.String("comment_num")
	if !ok || commentNum == "" {
		commentNum = uuid.NewString()
	} else {
		_, err := schema.GetComment(commentNum, s.db)
		if err == nil {
			http.Error(w, fmt.Sprintf("comment %v already exists", commentNum), http.StatusConflict)
			return
		}
		if !errors.Is(err, schema.ErrCommentNotFound) {
			http.Error(w, fmt.Sprintf("error creating comment: %v", err), http.StatusInternalServerError)
			return
		}
	}

	c := schema.Comment{CommentNum: commentNum}
	if err := schema.ApplyCommentPayload(&c, payload); err != nil {
		http.Error(w, fmt.Sprintf("error creating comment: %v", err), domainStatus(err))
		return
	}

	if err := schema.ResolveTarget(c.Target(), s.db); err != nil {
		http.Error(w, fmt.Sprintf("error creating comment: %v", err), domainStatus(err))
		return
	}

	if err := schema.SaveComment(s.db, &c); err != nil {
		http.Error(w, fmt.Sprintf("error creating comment: %v", err), http.StatusInternalServerError)
		return
	}

	commentImportMetric.Inc()
	utils.WriteJsonResponse(w, c.View())
}

func (s *CommentService) Import(w http.ResponseWriter, r *http.Request) {
	var payload schema.Payload
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	if !payload.Has("comment_num") {
		http.Error(w, "comment_num is required to persist a comment", http.StatusUnprocessableEntity)
		return
	}

	c, err := schema.CommentFromPayload(payload, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error importing comment: %v", err), domainStatus(err))
		return
	}

	if err := schema.ResolveTarget(c.Target(), s.db); err != nil {
		http.Error(w, fmt.Sprintf("error importing comment: %v", err), domainStatus(err))
		return
	}

	if err := schema.SaveComment(s.db, c); err != nil {
		http.Error(w, fmt.Sprintf("error importing comment: %v", err), http.StatusInternalServerError)
		return
	}

	commentImportMetric.Inc()
	utils.WriteJsonResponse(w, c.View())
}

func (s *CommentService) Delete(w http.ResponseWriter, r *http.Request) {
	commentNum, err := utils.URLParam(r, "comment_num")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.db.Delete(&schema.Comment{CommentNum: commentNum})
	if result.Error != nil {
		slog.Error("sql error deleting comment", "comment_num", commentNum, "error", result.Error)
		http.Error(w, fmt.Sprintf("error deleting comment: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, schema.ErrCommentNotFound.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}
