package tests

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lawcase_platform/case_admin/schema"
)

func TestCreateCommentOnCase(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	seedCase(t, admin, testCaseNum)

	created, err := user.createComment(schema.Payload{
		"low_case_num":        testCaseNum,
		"comment_entity_type": "c",
		"comment_entity_num":  testCaseNum,
		"comment_text":        "key precedent applies",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Without a comment number in the payload one is generated.
	commentNum, _ := created.String("comment_num")
	if commentNum == "" {
		t.Fatalf("comment number should be generated: %v", created)
	}

	got, err := user.getComment(commentNum)
	if err != nil {
		t.Fatal(err)
	}
	if text, _ := got.String("comment_text"); text != "key precedent applies" {
		t.Fatalf("invalid comment %v", got)
	}

	_, err = user.createComment(schema.Payload{
		"comment_num":         commentNum,
		"low_case_num":        testCaseNum,
		"comment_entity_type": "c",
		"comment_entity_num":  testCaseNum,
	})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("duplicate comment number should conflict: %v", err)
	}
}

func TestCommentTargetResolution(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	seedCase(t, admin, testCaseNum)
	if _, err := admin.createBill(schema.Payload{"bill_num": "bill-1", "low_case_num": testCaseNum}); err != nil {
		t.Fatal(err)
	}
	bilu, err := admin.importBilu(schema.Payload{"title": "hearing", "body": "text", "act_date": "2020-01-02"})
	if err != nil {
		t.Fatal(err)
	}
	biluId, err := bilu.Int("id")
	if err != nil {
		t.Fatal(err)
	}

	targets := []struct {
		kind string
		id   string
	}{
		{"c", testCaseNum},
		{"b", "bill-1"},
		{"t", fmt.Sprintf("%d", biluId)},
	}
	for _, target := range targets {
		_, err := user.createComment(schema.Payload{
			"low_case_num":        testCaseNum,
			"comment_entity_type": target.kind,
			"comment_entity_num":  target.id,
			"comment_text":        "annotation",
		})
		if err != nil {
			t.Fatalf("comment on target kind %v should succeed: %v", target.kind, err)
		}
	}

	comments, err := user.listCommentsForCase(testCaseNum)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}

	badTargets := []struct {
		kind string
		id   string
	}{
		{"c", "no-such-case"},
		{"b", "no-such-bill"},
		{"t", "99999"},
		{"t", "not-numeric"},
		{"x", testCaseNum},
	}
	for _, target := range badTargets {
		_, err := user.createComment(schema.Payload{
			"low_case_num":        testCaseNum,
			"comment_entity_type": target.kind,
			"comment_entity_num":  target.id,
		})
		if err == nil {
			t.Fatalf("comment on target (%v, %v) should fail", target.kind, target.id)
		}
	}
}

func TestImportCommentMutatesInPlace(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	seedCase(t, admin, testCaseNum)

	_, err = user.importComment(schema.Payload{
		"comment_num":         "comment-1",
		"low_case_num":        testCaseNum,
		"comment_entity_type": "c",
		"comment_entity_num":  testCaseNum,
	})
	if err == nil {
		t.Fatal("import of unknown comment should fail")
	}

	created, err := user.createComment(schema.Payload{
		"comment_num":         "comment-1",
		"low_case_num":        testCaseNum,
		"comment_entity_type": "c",
		"comment_entity_num":  testCaseNum,
		"comment_text":        "original",
	})
	if err != nil {
		t.Fatal(err)
	}
	if num, _ := created.String("comment_num"); num != "comment-1" {
		t.Fatalf("invalid comment %v", created)
	}

	imported, err := user.importComment(schema.Payload{
		"comment_num":         "comment-1",
		"low_case_num":        testCaseNum,
		"comment_entity_type": "c",
		"comment_entity_num":  testCaseNum,
		"comment_text":        "edited",
	})
	if err != nil {
		t.Fatal(err)
	}
	if text, _ := imported.String("comment_text"); text != "edited" {
		t.Fatalf("invalid comment %v", imported)
	}

	comments, err := user.listCommentsForCase(testCaseNum)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 1 {
		t.Fatalf("import should not create a second row, got %d comments", len(comments))
	}
}

func TestDeleteComment(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	seedCase(t, admin, testCaseNum)
	if _, err := user.createComment(schema.Payload{
		"comment_num":         "comment-1",
		"low_case_num":        testCaseNum,
		"comment_entity_type": "c",
		"comment_entity_num":  testCaseNum,
	}); err != nil {
		t.Fatal(err)
	}

	if err := user.deleteComment("comment-1"); !errors.Is(err, ErrForbidden) {
		t.Fatal("users cannot delete comments")
	}

	if err := admin.deleteComment("comment-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := user.getComment("comment-1"); err == nil {
		t.Fatal("deleted comment should not resolve")
	}
}
