package schema

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Administrator is the single staff account for the admin pages. Exactly one
// row may exist, created once at provisioning time from configured credentials.
type Administrator struct {
	Id int64 `gorm:"primaryKey"`

	Username     string `gorm:"unique;size:32;not null"`
	PasswordHash []byte
	Confirmed    bool `gorm:"not null;default:true"`
}

// AdministratorId is the fixed primary key of the provisioned administrator.
const AdministratorId int64 = 1

const (
	// SystemUserId is the reserved account representing the administrator
	// proxy in the users table. It is not a human account.
	SystemUserId int64 = 999

	// FirstUserId is the smallest id assigned to registered users.
	FirstUserId int64 = 1000
)

const (
	GenderMale        = 1
	GenderFemale      = 2
	GenderUnspecified = 3
)

// Positions is the fixed enumeration of allowed values for User.Position.
var Positions = []string{"guard", "forward", "center"}

func ValidPosition(value string) bool {
	for _, p := range Positions {
		if p == value {
			return true
		}
	}
	return false
}

type User struct {
	Id int64 `gorm:"primaryKey"`

	IsAdmin     bool `gorm:"not null;default:false"`
	DisableTime *time.Time

	Username     *string `gorm:"unique;size:32"`
	Email        *string `gorm:"unique;size:32"`
	PasswordHash []byte

	Name     *string `gorm:"size:16"`
	Phone    *int64
	Nickname *string `gorm:"size:32"`
	Gender   *int64
	Age      *int64
	Tops     *int64
	Weight   *int64
	Position *string `gorm:"size:16"`
	AboutMe  *string
	Qq       *int64
	Wechat   *string `gorm:"size:16"`

	AvatarHash *string
	Confirmed  bool `gorm:"not null;default:false"`

	Infos []Info `gorm:"foreignKey:UserId"`
}

// AvatarHash computes the avatar hash for an email address. It is assigned
// once when a user is created with an email and no explicit avatar; normal
// update paths never recompute it.
func AvatarHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// Info is a short notification delivered to a user's inbox.
type Info struct {
	Id     int64 `gorm:"primaryKey"`
	UserId int64 `gorm:"not null;index"`

	Message string
	IsRead  bool `gorm:"not null;default:false"`

	Timestamp time.Time `gorm:"index"`
}

// Bilu is a recorded interview transcript. ActDate is the date the recorded
// event occurred, distinct from the record's own creation timestamp.
type Bilu struct {
	Id int64 `gorm:"primaryKey"`

	Title string `gorm:"size:32;default:'Title'"`
	Body  string

	ActDate   time.Time `gorm:"not null;index"`
	Timestamp time.Time `gorm:"index"`
}

// DefaultBiluTitle is used when an import payload carries no title.
const DefaultBiluTitle = "Title"

// AuditQuad is the record-keeping block repeated on LawCase, Comment and
// IndictmentBill. It is hand-populated by every upsert path; there is no
// automatic timestamping, so omitting it in a payload leaves null columns.
type AuditQuad struct {
	RecordStatus   string     `gorm:"type:char(1)"`
	CreateDatetime *time.Time `gorm:"column:create_datetime"`
	CreateBy       string     `gorm:"size:128"`
	UpdateDatetime *time.Time `gorm:"column:update_datetime"`
	UpdateBy       string     `gorm:"size:128"`
}

// LawCase is the root legal matter. The primary key is the court-issued case
// number string, not a surrogate id; every other domain table references it
// by that number.
type LawCase struct {
	LowCaseNum string `gorm:"column:low_case_num;primaryKey;size:128"`

	LowCaseReason         string     `gorm:"column:low_case_reason;size:128"`
	LowCaseParty          string     `gorm:"column:low_case_party;size:64"`
	LowCaseContent        string     `gorm:"column:low_case_content"`
	LowCaseCourt          string     `gorm:"column:low_case_court"`
	LowCaseDecisionTime   *time.Time `gorm:"column:low_case_decision_time"`
	LowCaseExecutiveJudge string     `gorm:"column:low_case_executive_judge;size:64"`
	LowCaseDefenceCounsel string     `gorm:"column:low_case_defence_counsel;size:64"`
	LowCaseName           string     `gorm:"column:low_case_name;size:128"`

	AuditQuad `gorm:"embedded"`
}

func (LawCase) TableName() string { return "law_case_info" }

// TargetKind discriminates the entity a comment decorates.
type TargetKind string

const (
	TargetCase       TargetKind = "c"
	TargetTranscript TargetKind = "t"
	TargetBill       TargetKind = "b"
)

// AnnotationTarget is the tagged (kind, id) reference a comment carries
// instead of a typed foreign key.
type AnnotationTarget struct {
	Kind TargetKind
	Id   string
}

// Comment is a free-text annotation attached to a sub-entity of a case.
type Comment struct {
	LowCaseNum string `gorm:"column:low_case_num;size:128;not null;index"`

	CommentNum        string `gorm:"column:comment_num;primaryKey;size:128"`
	CommentEntityType string `gorm:"column:comment_entity_type;type:char(1);not null"`
	CommentEntityNum  string `gorm:"column:comment_entity_num;size:128;not null"`
	CommentText       string `gorm:"column:comment_text;not null"`

	AuditQuad `gorm:"embedded"`
}

func (Comment) TableName() string { return "comment_info" }

func (c *Comment) Target() AnnotationTarget {
	return AnnotationTarget{Kind: TargetKind(c.CommentEntityType), Id: c.CommentEntityNum}
}

// IndictmentBill is a filing document tied to exactly one case.
type IndictmentBill struct {
	LowCaseNum string `gorm:"column:low_case_num;size:128;not null;index"`

	BillNum           string  `gorm:"column:bill_num;primaryKey;size:128;index"`
	BillPlaintiff     string  `gorm:"column:bill_plaintiff;not null"`
	BillDemandant     string  `gorm:"column:bill_demandant;not null"`
	BillThirdParty    *string `gorm:"column:bill_third_party"`
	BillProsecutor    string  `gorm:"column:bill_prosecutor;size:128;not null"`
	BillClaim         string  `gorm:"column:bill_claim;not null"`
	BillFactAndReason string  `gorm:"column:bill_fact_and_reason;not null"`

	AuditQuad `gorm:"embedded"`
}

func (IndictmentBill) TableName() string { return "indictment_bill_info" }
