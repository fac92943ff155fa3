package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAdministratorNotFound = errors.New("administrator not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrCaseNotFound          = errors.New("case not found")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrBillNotFound          = errors.New("indictment bill not found")
	ErrBiluNotFound          = errors.New("transcript not found")
	ErrInfoNotFound          = errors.New("notification not found")
	ErrDbAccessFailed        = errors.New("db access failed")

	ErrValidation         = errors.New("invalid payload")
	ErrAlreadyProvisioned = errors.New("administrator is already provisioned")
)

func HashPassword(plaintext string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 10)
	if err != nil {
		return nil, fmt.Errorf("error encrypting password: %w", err)
	}
	return hash, nil
}

// VerifyPassword compares a plaintext password against a stored hash. Only
// this comparison is exposed; the plaintext is never stored or readable.
func VerifyPassword(hash []byte, plaintext string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}

// ProvisionAdministrator creates the single administrator account. It fails
// with ErrAlreadyProvisioned if any administrator row exists.
func ProvisionAdministrator(db *gorm.DB, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return db.Transaction(func(txn *gorm.DB) error {
		var count int64
		result := txn.Model(&Administrator{}).Count(&count)
		if result.Error != nil {
			slog.Error("sql error checking for existing administrator", "error", result.Error)
			return ErrDbAccessFailed
		}
		if count > 0 {
			return ErrAlreadyProvisioned
		}

		admin := Administrator{
			Id:           AdministratorId,
			Username:     username,
			PasswordHash: hash,
			Confirmed:    true,
		}
		result = txn.Create(&admin)
		if result.Error != nil {
			slog.Error("sql error creating administrator", "error", result.Error)
			return ErrDbAccessFailed
		}
		return nil
	})
}

// SeedSystemUser creates the sentinel user with id 999 so that registered
// users start at id 1000. It is a no-op if the sentinel already exists.
func SeedSystemUser(db *gorm.DB, email, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return db.Transaction(func(txn *gorm.DB) error {
		var existing User
		result := txn.Limit(1).Find(&existing, "id = ?", SystemUserId)
		if result.Error != nil {
			slog.Error("sql error checking for system user", "error", result.Error)
			return ErrDbAccessFailed
		}
		if result.RowsAffected != 0 {
			return nil
		}

		username := "system"
		avatar := AvatarHash(email)
		user := User{
			Id:           SystemUserId,
			IsAdmin:      true,
			Username:     &username,
			Email:        &email,
			PasswordHash: hash,
			AvatarHash:   &avatar,
			Confirmed:    true,
		}
		result = txn.Create(&user)
		if result.Error != nil {
			slog.Error("sql error creating system user", "error", result.Error)
			return ErrDbAccessFailed
		}
		return nil
	})
}

// NextUserId returns the id for a newly registered user. Ids are assigned
// explicitly from max(id)+1 with a floor of FirstUserId so the invariant
// (999 = system, >=1000 = registered) holds on every database engine.
func NextUserId(txn *gorm.DB) (int64, error) {
	var maxId int64
	result := txn.Model(&User{}).Select("COALESCE(MAX(id), 0)").Scan(&maxId)
	if result.Error != nil {
		slog.Error("sql error finding max user id", "error", result.Error)
		return 0, ErrDbAccessFailed
	}
	if maxId < SystemUserId {
		maxId = SystemUserId
	}
	return maxId + 1, nil
}

func GetAdministrator(username string, db *gorm.DB) (Administrator, error) {
	var admin Administrator
	result := db.First(&admin, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return admin, ErrAdministratorNotFound
		}
		slog.Error("sql error in get administrator", "error", result.Error)
		return admin, ErrDbAccessFailed
	}
	return admin, nil
}

func GetUser(userId int64, db *gorm.DB) (User, error) {
	var user User
	result := db.First(&user, "id = ?", userId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		slog.Error("sql error in get user", "user_id", userId, "error", result.Error)
		return user, ErrDbAccessFailed
	}
	return user, nil
}

func GetUserByUsername(username string, db *gorm.DB) (User, error) {
	var user User
	result := db.First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		slog.Error("sql error in get user by username", "error", result.Error)
		return user, ErrDbAccessFailed
	}
	return user, nil
}

func GetCase(caseNum string, db *gorm.DB) (LawCase, error) {
	var c LawCase
	result := db.First(&c, "low_case_num = ?", caseNum)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c, ErrCaseNotFound
		}
		slog.Error("sql error in get case", "case_num", caseNum, "error", result.Error)
		return c, ErrDbAccessFailed
	}
	return c, nil
}

func GetComment(commentNum string, db *gorm.DB) (Comment, error) {
	var c Comment
	result := db.First(&c, "comment_num = ?", commentNum)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c, ErrCommentNotFound
		}
		slog.Error("sql error in get comment", "comment_num", commentNum, "error", result.Error)
		return c, ErrDbAccessFailed
	}
	return c, nil
}

func GetBill(billNum string, db *gorm.DB) (IndictmentBill, error) {
	var b IndictmentBill
	result := db.First(&b, "bill_num = ?", billNum)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return b, ErrBillNotFound
		}
		slog.Error("sql error in get bill", "bill_num", billNum, "error", result.Error)
		return b, ErrDbAccessFailed
	}
	return b, nil
}

func GetBilu(biluId int64, db *gorm.DB) (Bilu, error) {
	var b Bilu
	result := db.First(&b, "id = ?", biluId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return b, ErrBiluNotFound
		}
		slog.Error("sql error in get bilu", "bilu_id", biluId, "error", result.Error)
		return b, ErrDbAccessFailed
	}
	return b, nil
}

func GetInfo(infoId int64, db *gorm.DB) (Info, error) {
	var info Info
	result := db.First(&info, "id = ?", infoId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return info, ErrInfoNotFound
		}
		slog.Error("sql error in get info", "info_id", infoId, "error", result.Error)
		return info, ErrDbAccessFailed
	}
	return info, nil
}

// ResolveTarget checks that the entity a comment points at actually exists.
// Unknown kinds are a validation error.
func ResolveTarget(target AnnotationTarget, db *gorm.DB) error {
	switch target.Kind {
	case TargetCase:
		_, err := GetCase(target.Id, db)
		return err
	case TargetBill:
		_, err := GetBill(target.Id, db)
		return err
	case TargetTranscript:
		var biluId int64
		if _, err := fmt.Sscanf(target.Id, "%d", &biluId); err != nil {
			return fmt.Errorf("%w: transcript target id '%v' is not numeric", ErrValidation, target.Id)
		}
		_, err := GetBilu(biluId, db)
		return err
	default:
		return fmt.Errorf("%w: unknown annotation target kind '%v'", ErrValidation, target.Kind)
	}
}

// Save* persist entities produced by the payload transforms. Saving is a
// deliberate second step so the transforms stay side effect free. Concurrent
// saves of the same natural key are last-writer-wins; there is no
// optimistic-concurrency check.

func SaveCase(db *gorm.DB, c *LawCase) error {
	result := db.Save(c)
	if result.Error != nil {
		slog.Error("sql error saving case", "case_num", c.LowCaseNum, "error", result.Error)
		return ErrDbAccessFailed
	}
	return nil
}

func SaveComment(db *gorm.DB, c *Comment) error {
	result := db.Save(c)
	if result.Error != nil {
		slog.Error("sql error saving comment", "comment_num", c.CommentNum, "error", result.Error)
		return ErrDbAccessFailed
	}
	return nil
}

func SaveBill(db *gorm.DB, b *IndictmentBill) error {
	result := db.Save(b)
	if result.Error != nil {
		slog.Error("sql error saving bill", "bill_num", b.BillNum, "error", result.Error)
		return ErrDbAccessFailed
	}
	return nil
}

func SaveBilu(db *gorm.DB, b *Bilu) error {
	if b.Timestamp.IsZero() {
		b.Timestamp = time.Now().UTC()
	}
	result := db.Save(b)
	if result.Error != nil {
		slog.Error("sql error saving bilu", "bilu_id", b.Id, "error", result.Error)
		return ErrDbAccessFailed
	}
	return nil
}

func SaveUser(db *gorm.DB, u *User) error {
	result := db.Save(u)
	if result.Error != nil {
		slog.Error("sql error saving user", "user_id", u.Id, "error", result.Error)
		return ErrDbAccessFailed
	}
	return nil
}

// CreateInfo delivers a notification. The timestamp is assigned per insert,
// not once per process.
func CreateInfo(db *gorm.DB, userId int64, message string) (Info, error) {
	info := Info{UserId: userId, Message: message, Timestamp: time.Now().UTC()}
	result := db.Create(&info)
	if result.Error != nil {
		slog.Error("sql error creating info", "user_id", userId, "error", result.Error)
		return Info{}, ErrDbAccessFailed
	}
	return info, nil
}

// MarkInfoRead flips the read flag; notifications are never otherwise updated.
func MarkInfoRead(db *gorm.DB, infoId int64) error {
	result := db.Model(&Info{}).Where("id = ?", infoId).Update("is_read", true)
	if result.Error != nil {
		slog.Error("sql error marking info read", "info_id", infoId, "error", result.Error)
		return ErrDbAccessFailed
	}
	if result.RowsAffected == 0 {
		return ErrInfoNotFound
	}
	return nil
}
