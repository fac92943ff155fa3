package tests

import (
	"bytes"
	"testing"

	"lawcase_platform/case_admin/auth"
	"lawcase_platform/case_admin/schema"
	"lawcase_platform/case_admin/services"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	caseAdmin services.CaseAdmin
	api       chi.Router
	db        *gorm.DB
}

const (
	adminUsername = "admin123"
	adminPassword = "admin_password123"

	testHostname = "http://test.local"
)

func setupTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	err = db.AutoMigrate(
		&schema.Administrator{}, &schema.User{}, &schema.Info{},
		&schema.LawCase{}, &schema.Comment{}, &schema.IndictmentBill{},
		&schema.Bilu{},
	)
	if err != nil {
		t.Fatal(err)
	}

	userAuth, err := auth.NewBasicIdentityProvider(
		db,
		auth.NewAuditLogger(new(bytes.Buffer)),
		auth.BasicProviderArgs{
			Secret:        []byte("290zcv02ai249"),
			AdminUsername: adminUsername,
			AdminPassword: adminPassword,
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	caseAdmin := services.NewCaseAdmin(db, userAuth, services.Options{
		PublicHostname: testHostname,
		EnforceCaseRef: true,
	})

	return &testEnv{caseAdmin: caseAdmin, api: caseAdmin.Routes(), db: db}
}

func (t *testEnv) newClient() client {
	return client{api: t.api}
}

func (t *testEnv) newUser(username string) (client, error) {
	c := t.newClient()
	login, _, err := c.signup(username, username+"@mail.com", username+"_password")
	if err != nil {
		return client{}, err
	}

	err = c.login(login)
	if err != nil {
		return client{}, err
	}

	return c, nil
}

func (t *testEnv) adminClient() (client, error) {
	c := t.newClient()
	err := c.login(loginInfo{Username: adminUsername, Password: adminPassword})
	return c, err
}
