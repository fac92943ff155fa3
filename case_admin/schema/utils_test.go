package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvisionAdministrator(t *testing.T) {
	db := newTestDb(t)

	err := ProvisionAdministrator(db, "staff", "staff_password")
	assert.NoError(t, err)

	err = ProvisionAdministrator(db, "other", "other_password")
	assert.ErrorIs(t, err, ErrAlreadyProvisioned)

	admin, err := GetAdministrator("staff", db)
	assert.NoError(t, err)
	assert.Equal(t, AdministratorId, admin.Id)
	assert.True(t, admin.Confirmed)

	assert.True(t, VerifyPassword(admin.PasswordHash, "staff_password"))
	assert.False(t, VerifyPassword(admin.PasswordHash, "wrong_password"))

	_, err = GetAdministrator("other", db)
	assert.ErrorIs(t, err, ErrAdministratorNotFound)
}

func TestUserIdAssignment(t *testing.T) {
	db := newTestDb(t)

	assert.NoError(t, SeedSystemUser(db, "system@mail.com", "system_password"))
	// Seeding twice is a no-op.
	assert.NoError(t, SeedSystemUser(db, "system@mail.com", "system_password"))

	system, err := GetUser(SystemUserId, db)
	assert.NoError(t, err)
	assert.True(t, system.IsAdmin)

	for i := 0; i < 3; i++ {
		id, err := NextUserId(db)
		assert.NoError(t, err)
		assert.Equal(t, FirstUserId+int64(i), id)

		username := fmt.Sprintf("user%d", i)
		assert.NoError(t, SaveUser(db, &User{Id: id, Username: &username}))
	}
}

func TestNextUserIdOnEmptyTable(t *testing.T) {
	db := newTestDb(t)

	// Even without the sentinel row ids start above the reserved range.
	id, err := NextUserId(db)
	assert.NoError(t, err)
	assert.Equal(t, FirstUserId, id)
}

func TestResolveTarget(t *testing.T) {
	db := newTestDb(t)

	assert.NoError(t, SaveCase(db, &LawCase{LowCaseNum: "case-1"}))
	assert.NoError(t, SaveBill(db, &IndictmentBill{BillNum: "bill-1", LowCaseNum: "case-1"}))
	bilu := Bilu{Title: "t"}
	assert.NoError(t, SaveBilu(db, &bilu))

	assert.NoError(t, ResolveTarget(AnnotationTarget{Kind: TargetCase, Id: "case-1"}, db))
	assert.NoError(t, ResolveTarget(AnnotationTarget{Kind: TargetBill, Id: "bill-1"}, db))
	assert.NoError(t, ResolveTarget(AnnotationTarget{Kind: TargetTranscript, Id: fmt.Sprintf("%d", bilu.Id)}, db))

	assert.ErrorIs(t, ResolveTarget(AnnotationTarget{Kind: TargetCase, Id: "case-2"}, db), ErrCaseNotFound)
	assert.ErrorIs(t, ResolveTarget(AnnotationTarget{Kind: TargetBill, Id: "bill-2"}, db), ErrBillNotFound)
	assert.ErrorIs(t, ResolveTarget(AnnotationTarget{Kind: TargetTranscript, Id: "999"}, db), ErrBiluNotFound)
	assert.ErrorIs(t, ResolveTarget(AnnotationTarget{Kind: TargetTranscript, Id: "abc"}, db), ErrValidation)
	assert.ErrorIs(t, ResolveTarget(AnnotationTarget{Kind: "x", Id: "case-1"}, db), ErrValidation)
}

func TestInfoDelivery(t *testing.T) {
	db := newTestDb(t)

	first, err := CreateInfo(db, 1000, "first")
	assert.NoError(t, err)
	second, err := CreateInfo(db, 1000, "second")
	assert.NoError(t, err)

	// Each delivery gets its own timestamp, assigned at insert.
	assert.False(t, second.Timestamp.Before(first.Timestamp))

	assert.NoError(t, MarkInfoRead(db, first.Id))
	stored, err := GetInfo(first.Id, db)
	assert.NoError(t, err)
	assert.True(t, stored.IsRead)

	assert.ErrorIs(t, MarkInfoRead(db, 12345), ErrInfoNotFound)
}
