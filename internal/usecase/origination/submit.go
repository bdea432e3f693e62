package origination

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
)

// UploadPartialFailure reports per-group photo uploads that failed after
// the loan record was already created. The loan is not rolled back; this
// is a deliberate accepted partial-failure state.
type UploadPartialFailure struct {
	LoanID string
	Errors []string
}

func (e *UploadPartialFailure) Error() string {
	return fmt.Sprintf("loan %s created but %d photo upload(s) failed: %s",
		e.LoanID, len(e.Errors), strings.Join(e.Errors, "; "))
}

// SubmitResult is the outcome of a successful 3→completed transition.
type SubmitResult struct {
	LoanID  string                     `json:"loan_id"`
	Receipt downstream.ReceiptDocument `json:"receipt"`
}

// Submit drives the final transition. Preconditions run client-side in a
// fixed order and the first failure wins, with no network call; the
// verified-customer check is re-run here to defend against direct state
// manipulation. On success the loan is created, all pending photo groups
// flush concurrently, the receipt document is produced, and only then is
// the draft reset.
func (u *Usecase) Submit(ctx context.Context, draftID string) (*SubmitResult, error) {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if d.Step != draft.StepLoanDetails {
		return nil, draft.ErrInvalidTransition
	}
	if err := d.ValidateForSubmit(); err != nil {
		return nil, err
	}
	if d.VerifiedCustomerID == "" {
		return nil, draft.ErrNotVerified
	}

	created, err := u.loans.CreateLoan(ctx, u.assemblePayload(d))
	if err != nil {
		// Draft is not reset; the error attaches to the current step.
		return nil, err
	}
	u.log.Info().Str("draft_id", draftID).Str("loan_id", created.LoanID).Msg("loan created")

	if uploadErrs := u.flushPhotos(ctx, d, created.LoanID); len(uploadErrs) > 0 {
		return nil, &UploadPartialFailure{LoanID: created.LoanID, Errors: uploadErrs}
	}

	disbursed := created.DisbursedAt
	if disbursed.IsZero() {
		disbursed = u.now().UTC()
	}
	receipt, err := u.renderer.RenderReceipt(ctx, created, d, downstream.PaymentSummary{
		Principal:      d.PrincipalAmount,
		RatePercent:    d.InterestRatePercent,
		TermMonths:     d.TermMonths,
		MonthlyPayment: d.MonthlyPayment,
		TotalPayable:   d.TotalPayable,
		DisbursedAt:    disbursed,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering receipt for loan %s: %w", created.LoanID, err)
	}

	if err := u.drafts.Delete(ctx, d); err != nil {
		return nil, err
	}
	return &SubmitResult{LoanID: created.LoanID, Receipt: receipt}, nil
}

func (u *Usecase) assemblePayload(d *draft.Draft) downstream.LoanPayload {
	items := make([]downstream.LoanItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, downstream.LoanItem{
			Description: it.Description,
			GrossWeight: it.GrossWeight,
			NetWeight:   it.NetWeight,
		})
	}
	return downstream.LoanPayload{
		CustomerID:          d.VerifiedCustomerID,
		NationalID:          d.NationalID,
		Name:                d.Name,
		Email:               d.Email,
		PrimaryMobile:       d.PrimaryMobile,
		SecondaryMobile:     d.SecondaryMobile,
		EmergencyMobile:     d.EmergencyMobile,
		EmergencyRelation:   d.EmergencyRelation,
		PresentAddress:      d.PresentAddress,
		PermanentAddress:    d.PermanentAddress,
		GoldItems:           items,
		InterestRatePercent: d.InterestRatePercent,
		PrincipalAmount:     d.PrincipalAmount,
		TermMonths:          d.TermMonths,
		MonthlyPayment:      d.MonthlyPayment,
		TotalPayable:        d.TotalPayable,
	}
}

// flushPhotos uploads every pending group in its own call, all groups
// concurrently, and waits for all of them to settle. Groups that made it
// are marked uploaded; failed groups stay staged. Partial uploads are not
// rolled back.
func (u *Usecase) flushPhotos(ctx context.Context, d *draft.Draft, loanID string) []string {
	groups := d.PendingGroups()
	if len(groups) == 0 {
		return nil
	}

	errs := make([]error, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g draft.PhotoGroup) {
			defer wg.Done()
			var files []downstream.UploadFile
			for _, p := range d.PhotosInGroup(g) {
				if p.Uploaded {
					continue
				}
				files = append(files, downstream.UploadFile{
					Name:        p.FileName,
					ContentType: p.ContentType,
					Content:     p.Content,
				})
			}
			_, errs[i] = u.photos.Upload(ctx, loanID, g, u.groupDescription(d, g), files)
		}(i, g)
	}
	wg.Wait()

	var failed []string
	for i, g := range groups {
		if errs[i] != nil {
			failed = append(failed, fmt.Sprintf("group %s: %v", g, errs[i]))
			continue
		}
		if merr := u.drafts.MarkPhotosUploaded(ctx, d, g); merr != nil {
			u.log.Error().Err(merr).Str("loan_id", loanID).Str("group", g.String()).
				Msg("photos uploaded but not marked")
		}
	}
	sort.Strings(failed)
	return failed
}

func (u *Usecase) groupDescription(d *draft.Draft, g draft.PhotoGroup) string {
	if g.IsAll() {
		return "all items together"
	}
	pos, _ := g.Position()
	if it := d.ItemAt(pos); it != nil && it.Description != "" {
		return it.Description
	}
	return fmt.Sprintf("gold item %d", pos)
}
