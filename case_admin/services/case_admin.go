package services

import (
	"log"
	"net/http"
	"os"

	"lawcase_platform/case_admin/auth"
	"lawcase_platform/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// CaseAdmin bundles the services of the legal-case administration backend
// behind a single router.
type CaseAdmin struct {
	user    UserService
	lawCase CaseService
	bill    BillService
	comment CommentService
	bilu    BiluService
	info    InfoService

	db *gorm.DB
}

type Options struct {
	// PublicHostname is the base for the URLs embedded in entity views.
	PublicHostname string

	// EnforceCaseRef rejects bills referencing case numbers that do not
	// resolve. When off, dangling references are accepted silently.
	EnforceCaseRef bool
}

func NewCaseAdmin(db *gorm.DB, userAuth auth.IdentityProvider, opts Options) CaseAdmin {
	links := NewLinkBuilder(opts.PublicHostname)

	return CaseAdmin{
		user:    UserService{db: db, userAuth: userAuth, links: links},
		lawCase: CaseService{db: db, userAuth: userAuth},
		bill:    BillService{db: db, userAuth: userAuth, enforceCaseRef: opts.EnforceCaseRef},
		comment: CommentService{db: db, userAuth: userAuth},
		bilu:    BiluService{db: db, userAuth: userAuth, links: links},
		info:    InfoService{db: db, userAuth: userAuth},
		db:      db,
	}
}

func (c *CaseAdmin) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Mount("/user", c.user.Routes())
	r.Mount("/case", c.lawCase.Routes())
	r.Mount("/bill", c.bill.Routes())
	r.Mount("/comment", c.comment.Routes())
	r.Mount("/bilu", c.bilu.Routes())
	r.Mount("/info", c.info.Routes())

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w)
	})

	return r
}
