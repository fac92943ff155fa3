package tests

import (
	"errors"
	"strings"
	"testing"

	"lawcase_platform/case_admin/schema"
)

func seedCase(t *testing.T, admin client, caseNum string) {
	t.Helper()
	if _, err := admin.createCase(schema.Payload{"low_case_num": caseNum}); err != nil {
		t.Fatal(err)
	}
}

func TestCreateAndGetBill(t *testing.T) {
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

	payload := schema.Payload{
		"bill_num":             "bill-1",
		"low_case_num":         testCaseNum,
		"bill_plaintiff":       "Zhang",
		"bill_demandant":       "Li",
		"bill_prosecutor":      "Wang",
		"bill_claim":           "repayment of 100000 yuan",
		"bill_fact_and_reason": "loan agreement dated 2018-06-01",
	}

	_, err = user.createBill(payload)
	if !errors.Is(err, ErrForbidden) {
		t.Fatal("users cannot create bills")
	}

	created, err := admin.createBill(payload)
	if err != nil {
		t.Fatal(err)
	}
	// The record status column defaults when the payload omits it.
	if status, _ := created.String("record_status"); status != "1" {
		t.Fatalf("invalid created bill %v", created)
	}
	if created["bill_third_party"] != nil {
		t.Fatalf("absent third party should be null: %v", created)
	}

	_, err = admin.createBill(payload)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("duplicate bill number should conflict: %v", err)
	}

	got, err := user.getBill("bill-1")
	if err != nil {
		t.Fatal(err)
	}
	if plaintiff, _ := got.String("bill_plaintiff"); plaintiff != "Zhang" {
		t.Fatalf("invalid bill %v", got)
	}

	bills, err := user.listBillsForCase(testCaseNum)
	if err != nil {
		t.Fatal(err)
	}
	if len(bills) != 1 {
		t.Fatalf("expected 1 bill, got %d", len(bills))
	}
}

func TestBillCaseRefEnforcement(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}

	// No case row exists, so the reference does not resolve.
	_, err = admin.createBill(schema.Payload{
		"bill_num":     "bill-1",
		"low_case_num": testCaseNum,
	})
	if err == nil || !strings.Contains(err.Error(), "unknown case") {
		t.Fatalf("bill referencing unknown case should be rejected: %v", err)
	}

	_, err = admin.createBill(schema.Payload{"bill_num": "bill-1"})
	if err == nil {
		t.Fatal("bill without case reference should be rejected")
	}

	seedCase(t, admin, testCaseNum)

	if _, err := admin.createBill(schema.Payload{
		"bill_num":     "bill-1",
		"low_case_num": testCaseNum,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestImportBillMutatesInPlace(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}

	seedCase(t, admin, testCaseNum)

	_, err = admin.importBill(schema.Payload{"bill_num": "bill-1", "low_case_num": testCaseNum})
	if err == nil {
		t.Fatal("import of unknown bill should fail")
	}

	if _, err := admin.createBill(schema.Payload{
		"bill_num":       "bill-1",
		"low_case_num":   testCaseNum,
		"bill_plaintiff": "Zhang",
	}); err != nil {
		t.Fatal(err)
	}

	// Two sequential imports of the same bill number: the final state matches
	// the last payload exactly.
	if _, err := admin.importBill(schema.Payload{
		"bill_num":       "bill-1",
		"low_case_num":   testCaseNum,
		"bill_plaintiff": "Zhao",
		"bill_claim":     "first amendment",
	}); err != nil {
		t.Fatal(err)
	}

	final := schema.Payload{
		"bill_num":       "bill-1",
		"low_case_num":   testCaseNum,
		"bill_plaintiff": "Qian",
		"record_status":  "2",
	}
	if _, err := admin.importBill(final); err != nil {
		t.Fatal(err)
	}

	got, err := admin.getBill("bill-1")
	if err != nil {
		t.Fatal(err)
	}
	if plaintiff, _ := got.String("bill_plaintiff"); plaintiff != "Qian" {
		t.Fatalf("invalid bill %v", got)
	}
	if claim, _ := got.String("bill_claim"); claim != "" {
		t.Fatalf("earlier claim should be overwritten: %v", got)
	}
	if status, _ := got.String("record_status"); status != "2" {
		t.Fatalf("invalid bill %v", got)
	}

	bills, err := admin.listBillsForCase(testCaseNum)
	if err != nil {
		t.Fatal(err)
	}
	if len(bills) != 1 {
		t.Fatalf("import should not create a second row, got %d bills", len(bills))
	}
}

func TestDeleteBill(t *testing.T) {
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

	if err := user.deleteBill("bill-1"); !errors.Is(err, ErrForbidden) {
		t.Fatal("users cannot delete bills")
	}

	if err := admin.deleteBill("bill-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := user.getBill("bill-1"); err == nil {
		t.Fatal("deleted bill should not resolve")
	}
	if err := admin.deleteBill("bill-1"); err == nil {
		t.Fatal("double delete should report not found")
	}
}
