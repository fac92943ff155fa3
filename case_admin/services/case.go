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

type CaseService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *CaseService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/list", s.List)
		r.Get("/{case_num}", s.Get)
		r.Get("/{case_num}/summary", s.Summary)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.AdminOnly())

		r.Post("/create", s.Create)
		r.Post("/import", s.Import)
		r.Delete("/{case_num}", s.Delete)
	})

	return r
}

func (s *CaseService) Get(w http.ResponseWriter, r *http.Request) {
	caseNum, err := utils.URLParam(r, "case_num")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := schema.GetCase(caseNum, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error loading case: %v", err), domainStatus(err))
		return
	}

	utils.WriteJsonResponse(w, c.View())
}

// Summary returns the case view with counts of the bills and comments that
// reference the case number.
func (s *CaseService) Summary(w http.ResponseWriter, r *http.Request) {
	caseNum, err := utils.URLParam(r, "case_num")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := schema.GetCase(caseNum, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error loading case: %v", err), domainStatus(err))
		return
	}

	var billCount, commentCount int64
	if result := s.db.Model(&schema.IndictmentBill{}).Where("low_case_num = ?", caseNum).Count(&billCount); result.Error != nil {
		slog.Error("sql error counting bills", "case_num", caseNum, "error", result.Error)
		http.Error(w, fmt.Sprintf("error summarizing case: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	if result := s.db.Model(&schema.Comment{}).Where("low_case_num = ?", caseNum).Count(&commentCount); result.Error != nil {
		slog.Error("sql error counting comments", "case_num", caseNum, "error", result.Error)
		http.Error(w, fmt.Sprintf("error summarizing case: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	view := c.View()
	view["bill_count"] = billCount
	view["comment_count"] = commentCount
	utils.WriteJsonResponse(w, view)
}

func (s *CaseService) List(w http.ResponseWriter, r *http.Request) {
	var cases []schema.LawCase
	result := s.db.Order("low_case_num").Find(&cases)
	if result.Error != nil {
		slog.Error("sql error listing cases", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing cases: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	views := make([]schema.Payload, 0, len(cases))
	for i := range cases {
		views = append(views, cases[i].View())
	}
	utils.WriteJsonResponse(w, views)
}

// Create registers a new case under a case number that must not exist yet.
func (s *CaseService) Create(w http.ResponseWriter, r *http.Request) {
	var payload schema.Payload
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	caseNum, ok := payload.String("low_case_num")
	if !ok || caseNum == "" {
		http.Error(w, "low_case_num is required", http.StatusUnprocessableEntity)
		return
	}

	_, err := schema.GetCase(caseNum, s.db)
	if err == nil {
		http.Error(w, fmt.Sprintf("case %v already exists", caseNum), http.StatusConflict)
		return
	}
	if !errors.Is(err, schema.ErrCaseNotFound) {
		http.Error(w, fmt.Sprintf("error creating case: %v", err), http.StatusInternalServerError)
		return
	}

	c := schema.LawCase{LowCaseNum: caseNum}
	if err := schema.ApplyCasePayload(&c, payload); err != nil {
		http.Error(w, fmt.Sprintf("error creating case: %v", err), domainStatus(err))
		return
	}

	if err := schema.SaveCase(s.db, &c); err != nil {
		http.Error(w, fmt.Sprintf("error creating case: %v", err), http.StatusInternalServerError)
		return
	}

	caseImportMetric.Inc()
	utils.WriteJsonResponse(w, c.View())
}

// Import applies upsert-from-payload semantics to an existing case: the case
// number must resolve, and the loaded row is overwritten with the payload.
// Two concurrent imports of the same case number are last-writer-wins.
func (s *CaseService) Import(w http.ResponseWriter, r *http.Request) {
	var payload schema.Payload
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	if !payload.Has("low_case_num") {
		http.Error(w, "low_case_num is required to persist a case", http.StatusUnprocessableEntity)
		return
	}

	c, err := schema.CaseFromPayload(payload, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error importing case: %v", err), domainStatus(err))
		return
	}

	if err := schema.SaveCase(s.db, c); err != nil {
		http.Error(w, fmt.Sprintf("error importing case: %v", err), http.StatusInternalServerError)
		return
	}

	caseImportMetric.Inc()
	utils.WriteJsonResponse(w, c.View())
}

func (s *CaseService) Delete(w http.ResponseWriter, r *http.Request) {
	caseNum, err := utils.URLParam(r, "case_num")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.db.Delete(&schema.LawCase{LowCaseNum: caseNum})
	if result.Error != nil {
		slog.Error("sql error deleting case", "case_num", caseNum, "error", result.Error)
		http.Error(w, fmt.Sprintf("error deleting case: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, schema.ErrCaseNotFound.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}
