package versions

import (
	"lawcase_platform/case_admin/schema"

	"gorm.io/gorm"
)

/*
 * The previous backend stored user avatars as uploaded files and left the
 * avatar column empty for accounts created before uploads existed. The go
 * backend derives a stable avatar hash from the account email instead, so
 * this migration adds the column and backfills it for rows that have an
 * email on record.
 */
func Migration_1_avatar_backfill(txn *gorm.DB) error {
	type User struct {
		Id         int64
		Email      *string
		AvatarHash *string `gorm:"size:32"`
	}

	if !txn.Migrator().HasColumn(&User{}, "avatar_hash") {
		if err := txn.Migrator().AddColumn(&User{}, "AvatarHash"); err != nil {
			return err
		}
	}

	var users []User
	err := txn.Model(&User{}).Where("avatar_hash IS NULL AND email IS NOT NULL").Find(&users).Error
	if err != nil {
		return err
	}

	for _, user := range users {
		hash := schema.AvatarHash(*user.Email)
		err := txn.Model(&User{}).Where("id = ?", user.Id).Update("avatar_hash", hash).Error
		if err != nil {
			return err
		}
	}

	return nil
}
