package schema

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// LinkBuilder produces a URL for a named route and id. The HTTP layer injects
// it; the views only embed the result.
type LinkBuilder func(route string, id interface{}) string

// The *FromPayload transforms implement upsert-from-payload semantics: if the
// natural key is present the existing row is loaded (NotFound if it does not
// resolve) and mutated, otherwise a detached entity is constructed. They
// never persist; the caller saves explicitly with the Save* functions.

func UserFromPayload(p Payload, db *gorm.DB) (*User, error) {
	var user *User
	if p.Has("id") {
		id, err := p.Int("id")
		if err != nil {
			return nil, err
		}
		existing, err := GetUser(id, db)
		if err != nil {
			return nil, err
		}
		user = &existing
	} else {
		user = &User{}
		user.Username = p.OptionalString("username")
		user.Email = p.OptionalString("email")
		if password, ok := p.String("password"); ok {
			hash, err := HashPassword(password)
			if err != nil {
				return nil, err
			}
			user.PasswordHash = hash
		}
	}

	if err := ApplyUserPayload(user, p); err != nil {
		return nil, err
	}
	return user, nil
}

// ApplyUserPayload overwrites the mutable profile fields from the payload.
// Identity fields (username, email, password) are untouched; those are fixed
// at creation. Optional fields absent from the payload are cleared, matching
// the profile-edit form which always submits the full field set.
func ApplyUserPayload(user *User, p Payload) error {
	if avatar, ok := p.String("avatar"); ok && avatar != "" {
		user.AvatarHash = &avatar
	} else if user.AvatarHash == nil && user.Email != nil {
		hash := AvatarHash(*user.Email)
		user.AvatarHash = &hash
	}

	var err error
	if user.Phone, err = p.OptionalInt("phone"); err != nil {
		return err
	}
	if user.Qq, err = p.OptionalInt("qq"); err != nil {
		return err
	}
	user.Wechat = p.OptionalString("wechat")
	user.Name = p.OptionalString("name")
	user.Nickname = p.OptionalString("nickname")

	gender, err := p.Int("gender")
	if err != nil {
		return err
	}
	user.Gender = &gender

	if user.Age, err = p.OptionalInt("age"); err != nil {
		return err
	}
	if user.Tops, err = p.OptionalInt("tops"); err != nil {
		return err
	}
	if user.Weight, err = p.OptionalInt("weight"); err != nil {
		return err
	}
	user.AboutMe = p.OptionalString("about_me")

	// Values outside the fixed enumeration are dropped without error. This
	// mirrors the historical behavior the admin UI depends on.
	if position, ok := p.String("position"); ok && ValidPosition(position) {
		user.Position = &position
	}

	return nil
}

// FullView is the self/admin view of a profile, contact fields included.
func (u *User) FullView() Payload {
	return Payload{
		"id":          u.Id,
		"username":    strOrNil(u.Username),
		"email":       strOrNil(u.Email),
		"phone":       intOrNil(u.Phone),
		"qq":          intOrNil(u.Qq),
		"wechat":      strOrNil(u.Wechat),
		"name":        strOrNil(u.Name),
		"nickname":    strOrNil(u.Nickname),
		"gender":      intOrNil(u.Gender),
		"age":         intOrNil(u.Age),
		"tops":        intOrNil(u.Tops),
		"weight":      intOrNil(u.Weight),
		"position":    strOrNil(u.Position),
		"about_me":    strOrNil(u.AboutMe),
		"avatar_hash": strOrNil(u.AvatarHash),
	}
}

// PublicView is the redacted view shown to other users.
func (u *User) PublicView(link LinkBuilder) Payload {
	view := Payload{
		"id":          u.Id,
		"username":    strOrNil(u.Username),
		"avatar_hash": strOrNil(u.AvatarHash),
		"nickname":    strOrNil(u.Nickname),
		"position":    strOrNil(u.Position),
		"about_me":    strOrNil(u.AboutMe),
	}
	if link != nil {
		view["profile_url"] = link("user.profile", u.Id)
	}
	return view
}

func (i *Info) View() Payload {
	return Payload{
		"id":      i.Id,
		"user_id": i.UserId,
		"message": i.Message,
		"is_read": i.IsRead,
	}
}

func BiluFromPayload(p Payload, db *gorm.DB) (*Bilu, error) {
	var bilu *Bilu
	if p.Has("id") {
		id, err := p.Int("id")
		if err != nil {
			return nil, err
		}
		existing, err := GetBilu(id, db)
		if err != nil {
			return nil, err
		}
		bilu = &existing
	} else {
		bilu = &Bilu{Title: DefaultBiluTitle}
	}

	if err := ApplyBiluPayload(bilu, p); err != nil {
		return nil, err
	}
	return bilu, nil
}

func ApplyBiluPayload(bilu *Bilu, p Payload) error {
	if title, ok := p.String("title"); ok {
		bilu.Title = title
	}
	bilu.Body, _ = p.String("body")

	actDate, ok := p.String("act_date")
	if !ok {
		return fmt.Errorf("%w: act_date is required", ErrValidation)
	}
	parsed, err := time.Parse(DateLayout, actDate)
	if err != nil {
		return fmt.Errorf("%w: act_date '%v' is not a valid date", ErrValidation, actDate)
	}
	bilu.ActDate = parsed
	return nil
}

// View renders a transcript. The brief form drops the body key entirely, so
// callers must not assume it exists.
func (b *Bilu) View(brief bool, link LinkBuilder) Payload {
	view := Payload{
		"id":        b.Id,
		"title":     b.Title,
		"body":      b.Body,
		"act_date":  b.ActDate.Format(DateLayout),
		"timestamp": b.Timestamp.UTC().Format(TimestampLayout),
	}
	if link != nil {
		view["api_url"] = link("api.bilu", b.Id)
		view["edit_url"] = link("manage.edit_bilu", b.Id)
	}
	if brief {
		delete(view, "body")
	}
	return view
}

func applyAuditQuad(quad *AuditQuad, p Payload) error {
	quad.RecordStatus, _ = p.String("record_status")
	quad.CreateBy, _ = p.String("create_by")
	quad.UpdateBy, _ = p.String("update_by")

	var err error
	if quad.CreateDatetime, err = p.Time("create_datetime"); err != nil {
		return err
	}
	if quad.UpdateDatetime, err = p.Time("update_datetime"); err != nil {
		return err
	}
	return nil
}

func (q *AuditQuad) view() Payload {
	return Payload{
		"record_status":   q.RecordStatus,
		"create_datetime": formatTime(q.CreateDatetime),
		"create_by":       q.CreateBy,
		"update_datetime": formatTime(q.UpdateDatetime),
		"update_by":       q.UpdateBy,
	}
}

func CaseFromPayload(p Payload, db *gorm.DB) (*LawCase, error) {
	var c *LawCase
	if p.Has("low_case_num") {
		caseNum, _ := p.String("low_case_num")
		existing, err := GetCase(caseNum, db)
		if err != nil {
			return nil, err
		}
		c = &existing
	} else {
		c = &LawCase{}
	}

	if err := ApplyCasePayload(c, p); err != nil {
		return nil, err
	}
	return c, nil
}

func ApplyCasePayload(c *LawCase, p Payload) error {
	c.LowCaseReason, _ = p.String("low_case_reason")
	c.LowCaseParty, _ = p.String("low_case_party")
	c.LowCaseContent, _ = p.String("low_case_content")
	c.LowCaseCourt, _ = p.String("low_case_court")
	c.LowCaseExecutiveJudge, _ = p.String("low_case_executive_judge")
	c.LowCaseDefenceCounsel, _ = p.String("low_case_defence_counsel")
	c.LowCaseName, _ = p.String("low_case_name")

	var err error
	if c.LowCaseDecisionTime, err = p.Time("low_case_decision_time"); err != nil {
		return err
	}
	return applyAuditQuad(&c.AuditQuad, p)
}

func (c *LawCase) View() Payload {
	view := c.AuditQuad.view()
	view["low_case_num"] = c.LowCaseNum
	view["low_case_reason"] = c.LowCaseReason
	view["low_case_party"] = c.LowCaseParty
	view["low_case_content"] = c.LowCaseContent
	view["low_case_court"] = c.LowCaseCourt
	view["low_case_decision_time"] = formatTime(c.LowCaseDecisionTime)
	view["low_case_executive_judge"] = c.LowCaseExecutiveJudge
	view["low_case_defence_counsel"] = c.LowCaseDefenceCounsel
	view["low_case_name"] = c.LowCaseName
	return view
}

func CommentFromPayload(p Payload, db *gorm.DB) (*Comment, error) {
	var c *Comment
	if p.Has("comment_num") {
		commentNum, _ := p.String("comment_num")
		existing, err := GetComment(commentNum, db)
		if err != nil {
			return nil, err
		}
		c = &existing
	} else {
		c = &Comment{}
	}

	if err := ApplyCommentPayload(c, p); err != nil {
		return nil, err
	}
	return c, nil
}

func ApplyCommentPayload(c *Comment, p Payload) error {
	c.LowCaseNum, _ = p.String("low_case_num")
	c.CommentEntityType, _ = p.String("comment_entity_type")
	c.CommentEntityNum, _ = p.String("comment_entity_num")
	c.CommentText, _ = p.String("comment_text")
	return applyAuditQuad(&c.AuditQuad, p)
}

func (c *Comment) View() Payload {
	view := c.AuditQuad.view()
	view["low_case_num"] = c.LowCaseNum
	view["comment_num"] = c.CommentNum
	view["comment_entity_type"] = c.CommentEntityType
	view["comment_entity_num"] = c.CommentEntityNum
	view["comment_text"] = c.CommentText
	return view
}

func BillFromPayload(p Payload, db *gorm.DB) (*IndictmentBill, error) {
	var b *IndictmentBill
	if p.Has("bill_num") {
		billNum, _ := p.String("bill_num")
		existing, err := GetBill(billNum, db)
		if err != nil {
			return nil, err
		}
		b = &existing
	} else {
		b = &IndictmentBill{}
	}

	if err := ApplyBillPayload(b, p); err != nil {
		return nil, err
	}
	return b, nil
}

func ApplyBillPayload(b *IndictmentBill, p Payload) error {
	b.LowCaseNum, _ = p.String("low_case_num")
	b.BillPlaintiff, _ = p.String("bill_plaintiff")
	b.BillDemandant, _ = p.String("bill_demandant")
	b.BillThirdParty = p.OptionalString("bill_third_party")
	b.BillProsecutor, _ = p.String("bill_prosecutor")
	b.BillClaim, _ = p.String("bill_claim")
	b.BillFactAndReason, _ = p.String("bill_fact_and_reason")

	if err := applyAuditQuad(&b.AuditQuad, p); err != nil {
		return err
	}
	if b.RecordStatus == "" {
		b.RecordStatus = "1"
	}
	return nil
}

func (b *IndictmentBill) View() Payload {
	view := b.AuditQuad.view()
	view["low_case_num"] = b.LowCaseNum
	view["bill_num"] = b.BillNum
	view["bill_plaintiff"] = b.BillPlaintiff
	view["bill_demandant"] = b.BillDemandant
	view["bill_third_party"] = strOrNil(b.BillThirdParty)
	view["bill_prosecutor"] = b.BillProsecutor
	view["bill_claim"] = b.BillClaim
	view["bill_fact_and_reason"] = b.BillFactAndReason
	return view
}
