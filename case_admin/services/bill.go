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

type BillService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider

	// enforceCaseRef decides whether a bill may reference a case number that
	// does not resolve. The schema declares the foreign key either way; this
	// switch is the configurable enforcement mode.
	enforceCaseRef bool
}

func (s *BillService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/case/{case_num}", s.ListByCase)
		r.Get("/{bill_num}", s.Get)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)
		r.Use(auth.AdminOnly())

		r.Post("/create", s.Create)
		r.Post("/import", s.Import)
		r.Delete("/{bill_num}", s.Delete)
	})

	return r
}

func (s *BillService) Get(w http.ResponseWriter, r *http.Request) {
	billNum, err := utils.URLParam(r, "bill_num")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := schema.GetBill(billNum, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error loading bill: %v", err), domainStatus(err))
		return
	}

	utils.WriteJsonResponse(w, b.View())
}

func (s *BillService) ListByCase(w http.ResponseWriter, r *http.Request) {
	caseNum, err := utils.URLParam(r, "case_num")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var bills []schema.IndictmentBill
	result := s.db.Order("bill_num").Find(&bills, "low_case_num = ?", caseNum)
	if result.Error != nil {
		slog.Error("sql error listing bills", "case_num", caseNum, "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing bills: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	views := make([]schema.Payload, 0, len(bills))
	for i := range bills {
		views = append(views, bills[i].View())
	}
	utils.WriteJsonResponse(w, views)
}

func (s *BillService) checkCaseRef(caseNum string) error {
	if !s.enforceCaseRef {
		return nil
	}
	if caseNum == "" {
		return fmt.Errorf("%w: low_case_num is required", schema.ErrValidation)
	}
	if _, err := schema.GetCase(caseNum, s.db); err != nil {
		if errors.Is(err, schema.ErrCaseNotFound) {
			return fmt.Errorf("%w: bill references unknown case %v", schema.ErrValidation, caseNum)
		}
		return err
	}
	return nil
}

func (s *BillService) Create(w http.ResponseWriter, r *http.Request) {
	var payload schema.Payload
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	billNum, ok := payload.String("bill_num")
	if !ok || billNum == "" {
		http.Error(w, "bill_num is required", http.StatusUnprocessableEntity)
		return
	}

	_, err := schema.GetBill(billNum, s.db)
	if err == nil {
		http.Error(w, fmt.Sprintf("bill %v already exists", billNum), http.StatusConflict)
		return
	}
	if !errors.Is(err, schema.ErrBillNotFound) {
		http.Error(w, fmt.Sprintf("error creating bill: %v", err), http.StatusInternalServerError)
		return
	}

	b := schema.IndictmentBill{BillNum: billNum}
	if err := schema.ApplyBillPayload(&b, payload); err != nil {
		http.Error(w, fmt.Sprintf("error creating bill: %v", err), domainStatus(err))
		return
	}

	if err := s.checkCaseRef(b.LowCaseNum); err != nil {
		http.Error(w, fmt.Sprintf("error creating bill: %v", err), domainStatus(err))
		return
	}

	if err := schema.SaveBill(s.db, &b); err != nil {
		http.Error(w, fmt.Sprintf("error creating bill: %v", err), http.StatusInternalServerError)
		return
	}

	billImportMetric.Inc()
	utils.WriteJsonResponse(w, b.View())
}

func (s *BillService) Import(w http.ResponseWriter, r *http.Request) {
	var payload schema.Payload
	if !utils.ParseRequestBody(w, r, &payload) {
		return
	}

	if !payload.Has("bill_num") {
		http.Error(w, "bill_num is required to persist a bill", http.StatusUnprocessableEntity)
		return
	}

	b, err := schema.BillFromPayload(payload, s.db)
	if err != nil {
		http.Error(w, fmt.Sprintf("error importing bill: %v", err), domainStatus(err))
		return
	}

	if err := s.checkCaseRef(b.LowCaseNum); err != nil {
		http.Error(w, fmt.Sprintf("error importing bill: %v", err), domainStatus(err))
		return
	}

	if err := schema.SaveBill(s.db, b); err != nil {
		http.Error(w, fmt.Sprintf("error importing bill: %v", err), http.StatusInternalServerError)
		return
	}

	billImportMetric.Inc()
	utils.WriteJsonResponse(w, b.View())
}

func (s *BillService) Delete(w http.ResponseWriter, r *http.Request) {
	billNum, err := utils.URLParam(r, "bill_num")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.db.Delete(&schema.IndictmentBill{BillNum: billNum})
	if result.Error != nil {
		slog.Error("sql error deleting bill", "bill_num", billNum, "error", result.Error)
		http.Error(w, fmt.Sprintf("error deleting bill: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, schema.ErrBillNotFound.Error(), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}
