// Package verification implements the customer verification protocol: the
// national-ID lookup, customer creation with OTP dispatch, and OTP
// validation that gates loan creation.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
)

// OtpLength is the fixed code length; validation fires only on a complete
// entry.
const OtpLength = 6

const purposeLoanCreation = "loan_creation"

type Usecase struct {
	drafts    draft.Repository
	customers downstream.CustomerAPI
	log       zerolog.Logger
}

func NewUsecase(drafts draft.Repository, customers downstream.CustomerAPI, log zerolog.Logger) *Usecase {
	return &Usecase{
		drafts:    drafts,
		customers: customers,
		log:       log.With().Str("component", "verification").Logger(),
	}
}

// digitsOnly strips everything but 0-9; OTP input is filtered before its
// length is measured.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LookupNationalID pre-fills the draft from an existing customer record.
// Called when the ID field reaches the full 12 digits; OTP is still
// required afterwards. Returns whether a profile was found.
func (u *Usecase) LookupNationalID(ctx context.Context, d *draft.Draft) (bool, error) {
	res, err := u.customers.CheckNationalID(ctx, d.NationalID)
	if err != nil {
		return false, err
	}
	if !res.Exists || res.Profile == nil {
		return false, nil
	}
	p := res.Profile
	d.Name = p.Name
	d.Email = p.Email
	d.PrimaryMobile = p.PrimaryMobile
	d.SecondaryMobile = p.SecondaryMobile
	d.EmergencyMobile = p.EmergencyMobile
	d.EmergencyRelation = p.EmergencyRelation
	d.PresentAddress = p.PresentAddress
	d.PermanentAddress = p.PermanentAddress
	if err := u.drafts.Save(ctx, d); err != nil {
		return true, err
	}
	return true, nil
}

// SubmitCustomerInfo drives the 1→2 transition: validates the customer
// form, creates/identifies the customer server-side (which dispatches the
// OTP), and advances to the OTP step. Advances regardless of whether an
// email was supplied; SMS is the default channel.
func (u *Usecase) SubmitCustomerInfo(ctx context.Context, draftID string) (*draft.Draft, error) {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if d.Step != draft.StepCustomerInfo {
		return nil, draft.ErrInvalidTransition
	}
	if err := d.ValidateCustomerInfo(); err != nil {
		return nil, err
	}

	in := downstream.CreateCustomerInput{
		NationalID:    d.NationalID,
		Name:          d.Name,
		Email:         d.Email,
		PrimaryMobile: d.PrimaryMobile,
		Purpose:       purposeLoanCreation,
	}
	if err := u.customers.Create(ctx, in); err != nil {
		// Error attaches to step 1; the step does not advance.
		return nil, err
	}

	d.Step = draft.StepOtp
	d.OtpStatus = draft.OtpIdle
	if err := u.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	u.log.Info().Str("draft_id", d.DraftID).Msg("customer submitted, otp dispatched")
	return d, nil
}

// SubmitOTP validates an OTP entry. Input is filtered to digits first; an
// incomplete entry re-arms the session to idle without a network call. A
// complete 6-digit entry validates exactly once per sequence; once the
// session is verified, repeated submissions are absorbed without another
// call. Stale in-flight results (superseded by a newer entry) are
// discarded.
func (u *Usecase) SubmitOTP(ctx context.Context, draftID, raw string) (*draft.Draft, error) {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if d.OtpStatus == draft.OtpValid {
		// Already verified: idempotent, no second validation call.
		return d, nil
	}
	if d.Step != draft.StepOtp {
		return nil, draft.ErrInvalidTransition
	}

	code := digitsOnly(raw)
	if len(code) != OtpLength {
		if d.OtpStatus != draft.OtpIdle {
			d.OtpStatus = draft.OtpIdle
			if err := u.drafts.Save(ctx, d); err != nil {
				return nil, err
			}
		}
		return d, nil
	}

	if d.Email == "" && d.PrimaryMobile == "" {
		// Short-circuit: nothing to validate against, no network call.
		return nil, draft.NewValidationError("No contact information available for OTP validation")
	}

	seq := d.OtpSeq + 1
	d.OtpSeq = seq
	d.OtpStatus = draft.OtpValidating
	if err := u.drafts.Save(ctx, d); err != nil {
		return nil, err
	}

	customerID, verr := u.customers.VerifyOTP(ctx, d.Email, code, d.PrimaryMobile)

	// Only the most recently submitted validation is authoritative.
	cur, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if cur.OtpSeq != seq {
		u.log.Debug().Str("draft_id", draftID).Uint64("seq", seq).Msg("discarding stale otp result")
		return cur, nil
	}

	if verr != nil {
		if errors.Is(verr, downstream.ErrNetwork) {
			cur.OtpStatus = draft.OtpIdle
			if err := u.drafts.Save(ctx, cur); err != nil {
				return nil, err
			}
			return cur, fmt.Errorf("otp validation: %w", downstream.ErrNetwork)
		}
		cur.OtpStatus = draft.OtpInvalid
		if err := u.drafts.Save(ctx, cur); err != nil {
			return nil, err
		}
		return cur, verr
	}

	cur.OtpStatus = draft.OtpValid
	cur.VerifiedCustomerID = customerID
	cur.Step = draft.StepLoanDetails
	if err := u.drafts.Save(ctx, cur); err != nil {
		return nil, err
	}
	u.log.Info().Str("draft_id", draftID).Msg("otp verified")
	return cur, nil
}
