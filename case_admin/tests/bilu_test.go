package tests

import (
	"errors"
	"fmt"
	"testing"

	"lawcase_platform/case_admin/schema"
)

func TestImportAndGetBilu(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	payload := schema.Payload{
		"title":    "first hearing",
		"body":     "Q: ... A: ...",
		"act_date": "2020-06-01",
	}

	_, err = user.importBilu(payload)
	if !errors.Is(err, ErrForbidden) {
		t.Fatal("users cannot import transcripts")
	}

	imported, err := admin.importBilu(payload)
	if err != nil {
		t.Fatal(err)
	}
	biluId, err := imported.Int("id")
	if err != nil {
		t.Fatal(err)
	}
	if actDate, _ := imported.String("act_date"); actDate != "2020-06-01" {
		t.Fatalf("invalid transcript %v", imported)
	}

	url, _ := imported.String("api_url")
	if url != fmt.Sprintf("%v/api/v1/bilu/%v", testHostname, biluId) {
		t.Fatalf("invalid api url %v", url)
	}
	url, _ = imported.String("edit_url")
	if url != fmt.Sprintf("%v/admin/bilu/%v/edit", testHostname, biluId) {
		t.Fatalf("invalid edit url %v", url)
	}

	got, err := user.getBilu(biluId, false)
	if err != nil {
		t.Fatal(err)
	}
	if body, _ := got.String("body"); body != "Q: ... A: ..." {
		t.Fatalf("invalid transcript %v", got)
	}

	brief, err := user.getBilu(biluId, true)
	if err != nil {
		t.Fatal(err)
	}
	if brief.Has("body") {
		t.Fatalf("brief view should not carry the body: %v", brief)
	}
	if title, _ := brief.String("title"); title != "first hearing" {
		t.Fatalf("invalid brief view %v", brief)
	}

	if _, err := user.getBilu(99999, false); err == nil {
		t.Fatal("unknown transcript id should not resolve")
	}
}

func TestImportBiluValidation(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}

	_, err = admin.importBilu(schema.Payload{"title": "t", "body": "b"})
	if err == nil {
		t.Fatal("transcript without act date should be rejected")
	}

	_, err = admin.importBilu(schema.Payload{"title": "t", "body": "b", "act_date": "2020-02-30"})
	if err == nil {
		t.Fatal("impossible calendar date should be rejected")
	}

	// Omitted title falls back to the default.
	imported, err := admin.importBilu(schema.Payload{"body": "b", "act_date": "2020-02-29"})
	if err != nil {
		t.Fatal(err)
	}
	if title, _ := imported.String("title"); title != schema.DefaultBiluTitle {
		t.Fatalf("invalid transcript %v", imported)
	}
}

func TestEditBiluById(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}

	imported, err := admin.importBilu(schema.Payload{"title": "draft", "body": "b", "act_date": "2020-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	biluId, err := imported.Int("id")
	if err != nil {
		t.Fatal(err)
	}

	edited, err := admin.importBilu(schema.Payload{
		"id": biluId, "title": "final", "body": "b2", "act_date": "2020-01-05",
	})
	if err != nil {
		t.Fatal(err)
	}
	editedId, err := edited.Int("id")
	if err != nil {
		t.Fatal(err)
	}
	if editedId != biluId {
		t.Fatalf("edit should keep the id, got %d and %d", biluId, editedId)
	}
	if title, _ := edited.String("title"); title != "final" {
		t.Fatalf("invalid transcript %v", edited)
	}

	bilus, err := admin.listBilus()
	if err != nil {
		t.Fatal(err)
	}
	if len(bilus) != 1 {
		t.Fatalf("edit should not create a second row, got %d transcripts", len(bilus))
	}

	_, err = admin.importBilu(schema.Payload{"id": 99999, "act_date": "2020-01-01"})
	if err == nil {
		t.Fatal("edit of unknown transcript id should fail")
	}
}

func TestListBilusNewestActDateFirst(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	dates := []string{"2020-01-01", "2021-05-05", "2019-12-31"}
	for _, date := range dates {
		if _, err := admin.importBilu(schema.Payload{"title": date, "body": "b", "act_date": date}); err != nil {
			t.Fatal(err)
		}
	}

	bilus, err := user.listBilus()
	if err != nil {
		t.Fatal(err)
	}
	if len(bilus) != 3 {
		t.Fatalf("expected 3 transcripts, got %d", len(bilus))
	}

	expected := []string{"2021-05-05", "2020-01-01", "2019-12-31"}
	for i, date := range expected {
		actDate, _ := bilus[i].String("act_date")
		if actDate != date {
			t.Fatalf("invalid list order: %v", bilus)
		}
		if bilus[i].Has("body") {
			t.Fatalf("list should use the brief view: %v", bilus[i])
		}
	}
}

func TestDeleteBilu(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	imported, err := admin.importBilu(schema.Payload{"title": "t", "body": "b", "act_date": "2020-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	biluId, err := imported.Int("id")
	if err != nil {
		t.Fatal(err)
	}

	if err := user.deleteBilu(biluId); !errors.Is(err, ErrForbidden) {
		t.Fatal("users cannot delete transcripts")
	}

	if err := admin.deleteBilu(biluId); err != nil {
		t.Fatal(err)
	}
	if _, err := user.getBilu(biluId, false); err == nil {
		t.Fatal("deleted transcript should not resolve")
	}
	if err := admin.deleteBilu(biluId); err == nil {
		t.Fatal("double delete should report not found")
	}
}
