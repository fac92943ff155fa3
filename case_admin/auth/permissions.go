package auth

import (
	"fmt"
	"net/http"
)

func AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			requester, err := RequesterFromContext(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			if !requester.IsAdmin {
				http.Error(w, fmt.Sprintf("account %v is not an admin", requester.Id), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// SelfOrAdminOnly guards endpoints addressing a specific user account: the
// owning user may pass, as may any admin.
func SelfOrAdminOnly(targetId func(r *http.Request) (int64, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			requester, err := RequesterFromContext(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			id, err := targetId(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			if !requester.IsAdmin && requester.Id != id {
				http.Error(w, fmt.Sprintf("account %v may not access account %v", requester.Id, id), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
