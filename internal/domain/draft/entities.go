package draft

import (
	"time"

	"gorm.io/gorm"
)

// Step is the wizard stage the draft currently sits on. Transitions are
// linear; failures never move the step, they attach an error to it.
type Step string

const (
	StepCustomerInfo Step = "customer_info"
	StepOtp          Step = "otp_verification"
	StepLoanDetails  Step = "loan_details"
	StepCompleted    Step = "completed"
)

// OtpStatus tracks the verification session inside a draft.
type OtpStatus string

const (
	OtpIdle       OtpStatus = "idle"
	OtpValidating OtpStatus = "validating"
	OtpValid      OtpStatus = "valid"
	OtpInvalid    OtpStatus = "invalid"
)

// Draft is the mutable working record for one in-progress origination.
// It is owned exclusively by one session; created empty at workflow start,
// soft-deleted on successful submission or explicit cancel.
type Draft struct {
	ID      uint64 `gorm:"primaryKey;column:id" json:"-"`
	DraftID string `gorm:"size:32;uniqueIndex:ux_drafts_draft_id_active" json:"draft_id"`
	Step    Step   `gorm:"type:enum('customer_info','otp_verification','loan_details','completed');default:'customer_info'" json:"step"`

	NationalID        string `gorm:"size:12" json:"national_id"`
	Name              string `gorm:"size:120" json:"name"`
	Email             string `gorm:"size:254" json:"email"`
	PrimaryMobile     string `gorm:"size:20" json:"primary_mobile"`
	SecondaryMobile   string `gorm:"size:20" json:"secondary_mobile"`
	EmergencyMobile   string `gorm:"size:20" json:"emergency_mobile"`
	EmergencyRelation string `gorm:"size:60" json:"emergency_relation"`
	PresentAddress    string `gorm:"type:text" json:"present_address"`
	PermanentAddress  string `gorm:"type:text" json:"permanent_address"`

	InterestRatePercent float64 `gorm:"type:decimal(6,2)" json:"interest_rate_percent"`
	PrincipalAmount     float64 `gorm:"type:decimal(18,2)" json:"principal_amount"`
	TermMonths          int     `json:"term_months"`
	MonthlyPayment      float64 `gorm:"type:decimal(18,2)" json:"monthly_payment"`
	TotalPayable        float64 `gorm:"type:decimal(18,2)" json:"total_payable"`

	OtpStatus          OtpStatus `gorm:"type:enum('idle','validating','valid','invalid');default:'idle'" json:"otp_status"`
	OtpSeq             uint64    `json:"-"`
	QuoteSeq           uint64    `json:"-"`
	VerifiedCustomerID string    `gorm:"size:64" json:"verified_customer_id,omitempty"`

	Items  []GoldItem    `gorm:"foreignKey:DraftRef;references:ID" json:"gold_items"`
	Photos []StagedPhoto `gorm:"foreignKey:DraftRef;references:ID" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Draft) TableName() string { return "loan_drafts" }

// GoldItem is one pledged article. Position is the photo-association key:
// stable across adds, shifted down when a lower-positioned item is removed.
type GoldItem struct {
	ID          uint64  `gorm:"primaryKey;column:id" json:"-"`
	DraftRef    uint64  `gorm:"column:draft_ref;index" json:"-"`
	Position    int     `gorm:"column:position" json:"position"`
	Description string  `gorm:"size:200" json:"description"`
	GrossWeight float64 `gorm:"type:decimal(10,3)" json:"gross_weight"`
	NetWeight   float64 `gorm:"type:decimal(10,3)" json:"net_weight"`
}

func (GoldItem) TableName() string { return "gold_items" }

// Pledgeable reports whether the item can back a loan: non-empty
// description and strictly positive weights in grams.
func (g GoldItem) Pledgeable() bool {
	return g.Description != "" && g.GrossWeight > 0 && g.NetWeight > 0
}

// StagedPhoto is an image attached before the parent loan exists, held in
// local blob storage. Uploaded stays false ("ready") until the flush that
// follows loan creation.
type StagedPhoto struct {
	ID          uint64 `gorm:"primaryKey;column:id" json:"-"`
	DraftRef    uint64 `gorm:"column:draft_ref;index" json:"-"`
	Handle      string `gorm:"size:36;uniqueIndex" json:"handle"`
	GroupIndex  int    `gorm:"column:group_index" json:"-"`
	FileName    string `gorm:"size:255" json:"file_name"`
	ContentType string `gorm:"size:100" json:"content_type"`
	Content     []byte `gorm:"type:mediumblob" json:"-"`
	Uploaded    bool   `json:"uploaded"`
}

func (StagedPhoto) TableName() string { return "staged_photos" }

func (p StagedPhoto) Group() PhotoGroup { return GroupFromWire(p.GroupIndex) }

// ItemAt returns the gold item at the given position, or nil.
func (d *Draft) ItemAt(position int) *GoldItem {
	for i := range d.Items {
		if d.Items[i].Position == position {
			return &d.Items[i]
		}
	}
	return nil
}

// PhotosInGroup returns the staged photos associated with one group, in
// staging order.
func (d *Draft) PhotosInGroup(g PhotoGroup) []StagedPhoto {
	var out []StagedPhoto
	for _, p := range d.Photos {
		if p.GroupIndex == g.WireIndex() {
			out = append(out, p)
		}
	}
	return out
}

// PendingGroups lists every group holding at least one staged,
// not-yet-uploaded photo. Order: item groups by position, then all-items.
func (d *Draft) PendingGroups() []PhotoGroup {
	seen := make(map[int]bool)
	var out []PhotoGroup
	for i := range d.Items {
		pos := d.Items[i].Position
		for _, p := range d.Photos {
			if p.GroupIndex == pos && !p.Uploaded {
				if !seen[pos] {
					seen[pos] = true
					out = append(out, ItemGroup(pos))
				}
				break
			}
		}
	}
	for _, p := range d.Photos {
		if p.GroupIndex == allItemsWire && !p.Uploaded && !seen[allItemsWire] {
			seen[allItemsWire] = true
			out = append(out, AllItemsGroup())
		}
	}
	return out
}

// HasPledgeableItem reports whether at least one gold item can back the loan.
func (d *Draft) HasPledgeableItem() bool {
	for _, it := range d.Items {
		if it.Pledgeable() {
			return true
		}
	}
	return false
}
