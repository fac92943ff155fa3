package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"lawcase_platform/case_admin/schema"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	caseImportMetric    = promauto.NewCounter(prometheus.CounterOpts{Name: "case_imports", Help: "Case record imports"})
	billImportMetric    = promauto.NewCounter(prometheus.CounterOpts{Name: "bill_imports", Help: "Indictment bill imports"})
	commentImportMetric = promauto.NewCounter(prometheus.CounterOpts{Name: "comment_imports", Help: "Annotation imports"})
	biluImportMetric    = promauto.NewCounter(prometheus.CounterOpts{Name: "bilu_imports", Help: "Transcript imports"})
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int) error {
	return &codedError{err: err, code: code}
}

func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	slog.Error("non coded error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

// domainStatus maps the domain error taxonomy onto HTTP statuses: missing
// rows are 404, malformed payloads 422, everything else a server error.
func domainStatus(err error) int {
	switch {
	case errors.Is(err, schema.ErrUserNotFound),
		errors.Is(err, schema.ErrAdministratorNotFound),
		errors.Is(err, schema.ErrCaseNotFound),
		errors.Is(err, schema.ErrCommentNotFound),
		errors.Is(err, schema.ErrBillNotFound),
		errors.Is(err, schema.ErrBiluNotFound),
		errors.Is(err, schema.ErrInfoNotFound):
		return http.StatusNotFound
	case errors.Is(err, schema.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewLinkBuilder resolves the route names the entity views embed into URLs
// under the configured public hostname.
func NewLinkBuilder(hostname string) schema.LinkBuilder {
	return func(route string, id interface{}) string {
		switch route {
		case "user.profile":
			return fmt.Sprintf("%v/api/v1/user/%v/profile", hostname, id)
		case "api.bilu":
			return fmt.Sprintf("%v/api/v1/bilu/%v", hostname, id)
		case "manage.edit_bilu":
			return fmt.Sprintf("%v/admin/bilu/%v/edit", hostname, id)
		default:
			return fmt.Sprintf("%v/%v", hostname, id)
		}
	}
}
