package client

import (
	"fmt"

	"lawcase_platform/case_admin/schema"
)

// CaseAdminClient is a programmatic client for the case admin API. It is used
// by internal tooling and batch importers; the payloads it sends and receives
// are the same mapping views the HTTP layer serves.
type CaseAdminClient struct {
	BaseClient
}

func New(baseUrl string) CaseAdminClient {
	return CaseAdminClient{BaseClient: NewBaseClient(baseUrl, "")}
}

func (c *CaseAdminClient) Login(username, password string) error {
	var res struct {
		AccountId   int64  `json:"account_id"`
		AccessToken string `json:"access_token"`
	}
	err := c.Get("/api/v1/user/login").Login(username, password).Do(&res)
	if err != nil {
		return err
	}
	c.authToken = res.AccessToken
	return nil
}

func (c *CaseAdminClient) Signup(username, email, password string) (int64, string, error) {
	body := map[string]string{"username": username, "email": email, "password": password}

	var res struct {
		UserId            int64  `json:"user_id"`
		ConfirmationToken string `json:"confirmation_token"`
	}
	err := c.Post("/api/v1/user/signup").Json(body).Do(&res)
	return res.UserId, res.ConfirmationToken, err
}

func (c *CaseAdminClient) Confirm(token string) error {
	return c.Get(fmt.Sprintf("/api/v1/user/confirm/%v", token)).Do(nil)
}

func (c *CaseAdminClient) UserInfo() (schema.Payload, error) {
	var res schema.Payload
	err := c.Get("/api/v1/user/info").Do(&res)
	return res, err
}

func (c *CaseAdminClient) UpdateProfile(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/api/v1/user/profile").Json(payload).Do(&res)
	return res, err
}

func (c *CaseAdminClient) ImportCase(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/api/v1/case/import").Json(payload).Do(&res)
	return res, err
}

func (c *CaseAdminClient) CreateCase(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/api/v1/case/create").Json(payload).Do(&res)
	return res, err
}

func (c *CaseAdminClient) GetCase(caseNum string) (schema.Payload, error) {
	var res schema.Payload
	err := c.Get(fmt.Sprintf("/api/v1/case/%v", caseNum)).Do(&res)
	return res, err
}

func (c *CaseAdminClient) CaseSummary(caseNum string) (schema.Payload, error) {
	var res schema.Payload
	err := c.Get(fmt.Sprintf("/api/v1/case/%v/summary", caseNum)).Do(&res)
	return res, err
}

func (c *CaseAdminClient) ListCases() ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get("/api/v1/case/list").Do(&res)
	return res, err
}

func (c *CaseAdminClient) DeleteCase(caseNum string) error {
	return c.Delete(fmt.Sprintf("/api/v1/case/%v", caseNum)).Do(nil)
}

func (c *CaseAdminClient) ImportBill(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/api/v1/bill/import").Json(payload).Do(&res)
	return res, err
}

func (c *CaseAdminClient) CreateBill(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/api/v1/bill/create").Json(payload).Do(&res)
	return res, err
}

func (c *CaseAdminClient) GetBill(billNum string) (schema.Payload, error) {
	var res schema.Payload
	err := c.Get(fmt.Sprintf("/api/v1/bill/%v", billNum)).Do(&res)
	return res, err
}

func (c *CaseAdminClient) ListBillsForCase(caseNum string) ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get(fmt.Sprintf("/api/v1/bill/case/%v", caseNum)).Do(&res)
	return res, err
}

func (c *CaseAdminClient) CreateComment(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/api/v1/comment/create").Json(payload).Do(&res)
	return res, err
}

func (c *CaseAdminClient) ImportComment(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/api/v1/comment/import").Json(payload).Do(&res)
	return res, err
}

func (c *CaseAdminClient) ListCommentsForCase(caseNum string) ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get(fmt.Sprintf("/api/v1/comment/case/%v", caseNum)).Do(&res)
	return res, err
}

func (c *CaseAdminClient) ImportBilu(payload schema.Payload) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/api/v1/bilu/import").Json(payload).Do(&res)
	return res, err
}

func (c *CaseAdminClient) GetBilu(biluId int64, brief bool) (schema.Payload, error) {
	req := c.Get(fmt.Sprintf("/api/v1/bilu/%v", biluId))
	if brief {
		req = req.Param("brief", "true")
	}
	var res schema.Payload
	err := req.Do(&res)
	return res, err
}

func (c *CaseAdminClient) ListBilus() ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get("/api/v1/bilu/list").Do(&res)
	return res, err
}

func (c *CaseAdminClient) SendInfo(userId int64, message string) (schema.Payload, error) {
	var res schema.Payload
	err := c.Post("/api/v1/info/send").Json(map[string]interface{}{"user_id": userId, "message": message}).Do(&res)
	return res, err
}

func (c *CaseAdminClient) ListInfos() ([]schema.Payload, error) {
	var res []schema.Payload
	err := c.Get("/api/v1/info/list").Do(&res)
	return res, err
}

func (c *CaseAdminClient) MarkInfoRead(infoId int64) error {
	return c.Post(fmt.Sprintf("/api/v1/info/%v/read", infoId)).Do(nil)
}
