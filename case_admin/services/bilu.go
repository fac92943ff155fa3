package services

import (
	"fmt"
	"log/slog"
	"net/http"

	"lawcase_platform/case_admin/auth"
	"lawcase_platform/case_admin/schema"
	"lawcase_platform/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type BiluService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
	links    schema.LinkBuilder
}

func (s *BiluService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/list", s.List)
		r.Get("/{bilu_id}", s.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.AdminOnly())

		r.Post("/import", s.Import)
		r.Delete("/{bilu_id}", s.Delete)
	})

	return r
}

func (s *BiluService) Get(w http.ResponseWriter, r *http.Request) {
	biluId, err := utils.URLParamInt(r, "bilu_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := schema.GetBilu(biluId, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error loading transcript: %v", err), domainStatus(err))
		return
	}

	brief := r.URL.Query().Get("brief") == "true"
	utils.WriteJsonResponse(w, b.View(brief, s.links))
}

// List returns the brief view of every transcript, newest act date first.
func (s *BiluService) List(w http.ResponseWriter, r *http.Request) {
	var bilus []schema.Bilu
	result := s.db.Order("act_date desc").Find(&bilus)
	if result.Error != nil {
		slog.Error("sql error listing transcripts", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing transcripts: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	views := make([]schema.Payload, 0, len(bilus))
	for i := range bilus {
		views = append(views, bilus[i].View(true, s.links))
	}
	utils.WriteJsonResponse(w, views)
}

// Import creates or edits a transcript. The payload must carry a valid
// calendar act_date; parse failure is a hard validation error.
func (s *BiluService) Import(w http.ResponseWriter, r *http.Request) {
	var payload schema.Payload
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	b, err := schema.BiluFromPayload(payload, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error importing transcript: %v", err), domainStatus(err))
		return
	}

	if err := schema.SaveBilu(s.db, b); err != nil {
		http.Error(w, fmt.Sprintf("error importing transcript: %v", err), http.StatusInternalServerError)
		return
	}

	biluImportMetric.Inc()
	utils.WriteJsonResponse(w, b.View(false, s.links))
}

func (s *BiluService) Delete(w http.ResponseWriter, r *http.Request) {
	biluId, err := utils.URLParamInt(r, "bilu_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.db.Delete(&schema.Bilu{}, "id = ?", biluId)
	if result.Error != nil {
		slog.Error("sql error deleting transcript", "bilu_id", biluId, "error", result.Error)
		http.Error(w, fmt.Sprintf("error deleting transcript: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, schema.ErrBiluNotFound.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}
