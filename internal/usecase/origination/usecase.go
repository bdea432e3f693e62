// Package origination drives the three-stage loan wizard: customer info,
// OTP verification, loan details. It owns the draft lifecycle and the
// final submission that turns a draft into a loan.
package origination

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
	"goldloan-origination/internal/usecase/verification"
	"goldloan-origination/pkg/id"
)

// Limits bounds photo staging per group.
type Limits struct {
	MaxPhotosPerItem  int
	MaxPhotosAllItems int
}

func (l Limits) withDefaults() Limits {
	if l.MaxPhotosPerItem <= 0 {
		l.MaxPhotosPerItem = 3
	}
	if l.MaxPhotosAllItems <= 0 {
		l.MaxPhotosAllItems = 1
	}
	return l
}

type Usecase struct {
	drafts   draft.Repository
	loans    downstream.LoanAPI
	photos   downstream.PhotoStore
	renderer downstream.ReceiptRenderer
	verifier *verification.Usecase
	limits   Limits
	log      zerolog.Logger
	now      func() time.Time
}

func NewUsecase(
	drafts draft.Repository,
	loans downstream.LoanAPI,
	photos downstream.PhotoStore,
	renderer downstream.ReceiptRenderer,
	verifier *verification.Usecase,
	limits Limits,
	log zerolog.Logger,
) *Usecase {
	return &Usecase{
		drafts:   drafts,
		loans:    loans,
		photos:   photos,
		renderer: renderer,
		verifier: verifier,
		limits:   limits.withDefaults(),
		log:      log.With().Str("component", "origination").Logger(),
		now:      time.Now,
	}
}

// Start creates an empty draft at the customer-info step with one blank
// gold item row (the registry never goes below one item).
func (u *Usecase) Start(ctx context.Context) (*draft.Draft, error) {
	d := &draft.Draft{
		DraftID:   id.NewID32(),
		Step:      draft.StepCustomerInfo,
		OtpStatus: draft.OtpIdle,
		Items:     []draft.GoldItem{{Position: 0}},
	}
	if err := u.drafts.Create(ctx, d); err != nil {
		return nil, err
	}
	u.log.Info().Str("draft_id", d.DraftID).Msg("draft started")
	return d, nil
}

func (u *Usecase) Get(ctx context.Context, draftID string) (*draft.Draft, error) {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	return d, nil
}

// CustomerUpdate carries the full customer-info field set (PUT semantics).
type CustomerUpdate struct {
	NationalID        string
	Name              string
	Email             string
	PrimaryMobile     string
	SecondaryMobile   string
	EmergencyMobile   string
	EmergencyRelation string
	PresentAddress    string
	PermanentAddress  string
}

// UpdateCustomer applies a customer-info change and validates the next
// full state synchronously. The typed values are kept even when the
// distinct-mobile rule fails; the violation is returned for display. When
// the national ID reaches its full 12 digits a best-effort lookup runs
// and, on a hit, overwrites the editable fields with the known profile.
func (u *Usecase) UpdateCustomer(ctx context.Context, draftID string, in CustomerUpdate) (*draft.Draft, error) {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if d.Step != draft.StepCustomerInfo {
		return nil, draft.ErrInvalidTransition
	}

	idCompleted := draft.ValidNationalID(in.NationalID) && in.NationalID != d.NationalID

	d.NationalID = in.NationalID
	d.Name = in.Name
	d.Email = in.Email
	d.PrimaryMobile = in.PrimaryMobile
	d.SecondaryMobile = in.SecondaryMobile
	d.EmergencyMobile = in.EmergencyMobile
	d.EmergencyRelation = in.EmergencyRelation
	d.PresentAddress = in.PresentAddress
	d.PermanentAddress = in.PermanentAddress

	if err := u.drafts.Save(ctx, d); err != nil {
		return nil, err
	}

	if idCompleted {
		// Pre-fill for known customers; a lookup failure never blocks typing.
		if _, lerr := u.verifier.LookupNationalID(ctx, d); lerr != nil {
			u.log.Warn().Err(lerr).Str("draft_id", draftID).Msg("national-id lookup failed")
		}
	}

	if derr := d.CheckDistinctMobiles(); derr != nil {
		return d, derr
	}
	return d, nil
}

// AddItem appends an empty gold item; always legal on the loan-details step.
func (u *Usecase) AddItem(ctx context.Context, draftID string) (*draft.Draft, error) {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if d.Step != draft.StepLoanDetails {
		return nil, draft.ErrInvalidTransition
	}
	item := &draft.GoldItem{DraftRef: d.ID, Position: len(d.Items)}
	if err := u.drafts.AppendItem(ctx, d, item); err != nil {
		return nil, err
	}
	return u.Get(ctx, draftID)
}

// UpdateItem sets the description and weights of one gold item.
func (u *Usecase) UpdateItem(ctx context.Context, draftID string, position int, description string, gross, net float64) (*draft.Draft, error) {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if d.Step != draft.StepLoanDetails {
		return nil, draft.ErrInvalidTransition
	}
	it := d.ItemAt(position)
	if it == nil {
		return nil, draft.NewValidationError(fmt.Sprintf("No gold item at position %d", position))
	}
	if gross < 0 || net < 0 {
		return nil, draft.NewValidationError("Weights must be positive")
	}
	it.Description = strings.TrimSpace(description)
	it.GrossWeight = gross
	it.NetWeight = net
	if err := u.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// RemoveItem deletes the item at position along with its staged photo set.
// Removing the last remaining item is refused.
func (u *Usecase) RemoveItem(ctx context.Context, draftID string, position int) (*draft.Draft, error) {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if d.Step != draft.StepLoanDetails {
		return nil, draft.ErrInvalidTransition
	}
	if len(d.Items) <= 1 {
		return nil, draft.ErrLastItem
	}
	if d.ItemAt(position) == nil {
		return nil, draft.NewValidationError(fmt.Sprintf("No gold item at position %d", position))
	}
	if err := u.drafts.RemoveItem(ctx, d, position); err != nil {
		return nil, err
	}
	return u.Get(ctx, draftID)
}

// StageReport says what happened to a photo selection.
type StageReport struct {
	Staged  int
	Dropped int
}

// StagePhotos accepts image files for one group, up to the group's
// remaining capacity; excess valid files are silently dropped. Only a
// selection with zero valid image files is an error. The all-items group
// is only meaningful when more than one item is pledged.
func (u *Usecase) StagePhotos(ctx context.Context, draftID string, group draft.PhotoGroup, files []downstream.UploadFile) (*draft.Draft, StageReport, error) {
	var rep StageReport
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, rep, draft.ErrNotFound
	}
	if d.Step != draft.StepLoanDetails {
		return nil, rep, draft.ErrInvalidTransition
	}

	capacity := u.limits.MaxPhotosPerItem
	if group.IsAll() {
		if len(d.Items) < 2 {
			return nil, rep, draft.NewValidationError("The all-items photo is only available with more than one gold item")
		}
		capacity = u.limits.MaxPhotosAllItems
	} else if pos, _ := group.Position(); d.ItemAt(pos) == nil {
		return nil, rep, draft.NewValidationError(fmt.Sprintf("No gold item at position %d", pos))
	}

	var images []downstream.UploadFile
	for _, f := range files {
		if strings.HasPrefix(f.ContentType, "image/") {
			images = append(images, f)
		}
	}
	if len(images) == 0 {
		return nil, rep, draft.ErrNoImageFiles
	}

	remaining := capacity - len(d.PhotosInGroup(group))
	if remaining < 0 {
		remaining = 0
	}
	if len(images) > remaining {
		rep.Dropped = len(images) - remaining
		images = images[:remaining]
	}
	if len(images) == 0 {
		// capacity already full: excess dropped, nothing queued
		return d, rep, nil
	}

	staged := make([]draft.StagedPhoto, 0, len(images))
	for _, f := range images {
		staged = append(staged, draft.StagedPhoto{
			DraftRef:    d.ID,
			Handle:      uuid.NewString(),
			GroupIndex:  group.WireIndex(),
			FileName:    f.Name,
			ContentType: f.ContentType,
			Content:     f.Content,
		})
	}
	if err := u.drafts.StagePhotos(ctx, d, staged); err != nil {
		return nil, rep, err
	}
	rep.Staged = len(staged)
	return d, rep, nil
}

// Cancel discards the draft and everything staged under it.
func (u *Usecase) Cancel(ctx context.Context, draftID string) error {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return draft.ErrNotFound
	}
	return u.drafts.Delete(ctx, d)
}
