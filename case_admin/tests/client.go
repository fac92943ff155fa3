package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"lawcase_platform/case_admin/schema"

	"github.com/go-chi/chi/v5"
)

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	headers  map[string]string
	json     interface{}
	body     io.Reader
	login    *loginInfo
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
		headers:  nil,
		json:     nil,
		body:     nil,
	}
}

func (r *httpTestRequest) Header(key, value string) *httpTestRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpTestRequest) Login(username, password string) *httpTestRequest {
	r.login = &loginInfo{Username: username, Password: password}
	return r
}

func (r *httpTestRequest) Auth(token string) *httpTestRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %v", token))
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

// response body will be parsed into result, passing nil indicates that no result is returned.
func (r *httpTestRequest) Do(result interface{}) error {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	if r.headers != nil {
		for k, v := range r.headers {
			req.Header.Add(k, v)
		}
	}

	if r.login != nil {
		req.SetBasicAuth(r.login.Username, r.login.Password)
	}

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		if res.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		if res.StatusCode == http.StatusForbidden {
			return ErrForbidden
		}
		return fmt.Errorf("%v request to endpoint %v returned status %d, content '%v'", r.method, r.endpoint, res.StatusCode, w.Body.String())
	}

	if result != nil {
		err := json.NewDecoder(res.Body).Decode(result)
		if err != nil {
			return fmt.Errorf("error parsing %v response from endpoint %v: %w", r.method, r.endpoint, err)
		}
	}

	return nil
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type client struct {
	api       chi.Router
	authToken string
	accountId int64
}

func (c *client) Get(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "GET", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Post(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "POST", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Delete(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "DELETE", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

type loginInfo struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *client) signup(username, email, password string) (loginInfo, string, error) {
	body := map[string]string{
		"email": email, "username": username, "password": password,
	}

	var res struct {
		UserId            int64  `json:"user_id"`
		ConfirmationToken string `json:"confirmation_token"`
	}
	err := c.Post("/user/signup").Json(body).Do(&res)
	if err != nil {
		return loginInfo{}, "", err
	}

	return loginInfo{Username: username, Password: password}, res.ConfirmationToken, nil
}

func (c *client) login(login loginInfo) error {
	var res struct {
		AccountId   int64  `json:"account_id"`
		AccessToken string `json:"access_token"`
	}
	err := c.Get("/user/login").Login(login.Username, login.Password).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res.AccessToken
	c.accountId = res.AccountId

	return nil
}

func (c *client) confirm(token string) error {
	return c.Get(fmt.Sprintf("/user/confirm/%v", token)).Do(nil)
}

func (c *client) userInfo() (schema.Payload, error) {
	var res schema.Payload
	err := c.Get("/user/info").Do(&res)
	return res, err
}

func (c *client) updateProfile(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/user/profile").Json(payload).Do(&res)
	return res, err
}

func (c *client) publicProfile(userId int64) (schema.Payload, error) {
	var res schema.Payload
	err := c.Get(fmt.Sprintf("/user/%v/profile", userId)).Do(&res)
	return res, err
}

func (c *client) listUsers() ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get("/user/list").Do(&res)
	return res, err
}

func (c *client) disableUser(userId int64) error {
	return c.Post(fmt.Sprintf("/user/%v/disable", userId)).Do(nil)
}

func (c *client) enableUser(userId int64) error {
	return c.Delete(fmt.Sprintf("/user/%v/disable", userId)).Do(nil)
}

func (c *client) createCase(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/case/create").Json(payload).Do(&res)
	return res, err
}

func (c *client) importCase(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/case/import").Json(payload).Do(&res)
	return res, err
}

func (c *client) getCase(caseNum string) (schema.Payload, error) {
	var res schema.Payload
	err := c.Get(fmt.Sprintf("/case/%v", caseNum)).Do(&res)
	return res, err
}

func (c *client) caseSummary(caseNum string) (schema.Payload, error) {
	var res schema.Payload
	err := c.Get(fmt.Sprintf("/case/%v/summary", caseNum)).Do(&res)
	return res, err
}

func (c *client) listCases() ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get("/case/list").Do(&res)
	return res, err
}

func (c *client) deleteCase(caseNum string) error {
	return c.Delete(fmt.Sprintf("/case/%v", caseNum)).Do(nil)
}

func (c *client) createBill(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/bill/create").Json(payload).Do(&res)
	return res, err
}

func (c *client) importBill(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/bill/import").Json(payload).Do(&res)
	return res, err
}

func (c *client) getBill(billNum string) (schema.Payload, error) {
	var res schema.Payload
	err := c.Get(fmt.Sprintf("/bill/%v", billNum)).Do(&res)
	return res, err
}

func (c *client) listBillsForCase(caseNum string) ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get(fmt.Sprintf("/bill/case/%v", caseNum)).Do(&res)
	return res, err
}

func (c *client) deleteBill(billNum string) error {
	return c.Delete(fmt.Sprintf("/bill/%v", billNum)).Do(nil)
}

func (c *client) createComment(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/comment/create").Json(payload).Do(&res)
	return res, err
}

func (c *client) importComment(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/comment/import").Json(payload).Do(&res)
	return res, err
}

func (c *client) getComment(commentNum string) (schema.Payload, error) {
	var res schema.Payload
	err := c.Get(fmt.Sprintf("/comment/%v", commentNum)).Do(&res)
	return res, err
}

func (c *client) listCommentsForCase(caseNum string) ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get(fmt.Sprintf("/comment/case/%v", caseNum)).Do(&res)
	return res, err
}

func (c *client) deleteComment(commentNum string) error {
	return c.Delete(fmt.Sprintf("/comment/%v", commentNum)).Do(nil)
}

func (c *client) importBilu(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/bilu/import").Json(payload).Do(&res)
	return res, err
}

func (c *client) getBilu(biluId int64, brief bool) (schema.Payload, error) {
	endpoint := fmt.Sprintf("/bilu/%v", biluId)
	if brief {
		endpoint += "?brief=true"
	}
	var res schema.Payload
	err := c.Get(endpoint).Do(&res)
	return res, err
}

func (c *client) listBilus() ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get("/bilu/list").Do(&res)
	return res, err
}

func (c *client) deleteBilu(biluId int64) error {
	return c.Delete(fmt.Sprintf("/bilu/%v", biluId)).Do(nil)
}

func (c *client) sendInfo(userId int64, message string) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/info/send").Json(map[string]interface{}{"user_id": userId, "message": message}).Do(&res)
	return res, err
}

func (c *client) listInfos() ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get("/info/list").Do(&res)
	return res, err
}

func (c *client) listInfosFor(userId int64) ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get(fmt.Sprintf("/info/%v/list", userId)).Do(&res)
	return res, err
}

func (c *client) markInfoRead(infoId int64) error {
	return c.Post(fmt.Sprintf("/info/%v/read", infoId)).Do(nil)
}
