// Package quote keeps the draft's derived interest figures in sync with
// its principal/rate/term inputs, using the remote interest calculator
// with a deterministic local fallback.
package quote

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
)

type Usecase struct {
	drafts draft.Repository
	quoter downstream.InterestQuoter
	log    zerolog.Logger
	now    func() time.Time
}

func NewUsecase(drafts draft.Repository, quoter downstream.InterestQuoter, log zerolog.Logger) *Usecase {
	return &Usecase{
		drafts: drafts,
		quoter: quoter,
		log:    log.With().Str("component", "quote").Logger(),
		now:    time.Now,
	}
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

// Fallback is the local simple (non-compounding) interest computation used
// when the remote calculator is unreachable. The remote path may use daily
// or compounding interest; the two are allowed to disagree.
func Fallback(principal, annualRatePercent float64, termMonths int) downstream.Quote {
	interest := principal * annualRatePercent * (float64(termMonths) / 12) / 100
	total := principal + interest
	return downstream.Quote{
		MonthlyPayment: round2(total / float64(termMonths)),
		TotalAmount:    round2(total),
	}
}

// UpdateTerms applies a principal/rate/term change and recomputes the
// quote. When any of the three inputs is non-positive the quote is cleared
// instead (skipping the write when both figures are already empty). Only
// the latest input triple's result is applied; superseded in-flight
// recomputations are discarded.
func (u *Usecase) UpdateTerms(ctx context.Context, draftID string, principal, ratePercent float64, termMonths int) (*draft.Draft, error) {
	d, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if d.Step != draft.StepLoanDetails {
		return nil, draft.ErrInvalidTransition
	}

	d.PrincipalAmount = principal
	d.InterestRatePercent = ratePercent
	d.TermMonths = termMonths

	if principal <= 0 || ratePercent <= 0 || termMonths <= 0 {
		if d.MonthlyPayment == 0 && d.TotalPayable == 0 {
			// nothing to clear
			return d, u.drafts.Save(ctx, d)
		}
		d.MonthlyPayment = 0
		d.TotalPayable = 0
		return d, u.drafts.Save(ctx, d)
	}

	seq := d.QuoteSeq + 1
	d.QuoteSeq = seq
	if err := u.drafts.Save(ctx, d); err != nil {
		return nil, err
	}

	disbursement := u.now().UTC()
	closure := disbursement.AddDate(0, termMonths, 0)
	q, qerr := u.quoter.Quote(ctx, downstream.QuoteRequest{
		Principal:        principal,
		AnnualRate:       ratePercent,
		DisbursementDate: disbursement,
		ClosureDate:      closure,
		TermMonths:       termMonths,
	})
	if qerr != nil {
		u.log.Warn().Err(qerr).Str("draft_id", draftID).Msg("remote quote failed, using local fallback")
		q = Fallback(principal, ratePercent, termMonths)
	}

	// Re-read: a newer triple may have superseded this computation.
	cur, err := u.drafts.GetByDraftID(ctx, draftID)
	if err != nil {
		return nil, draft.ErrNotFound
	}
	if cur.QuoteSeq != seq {
		u.log.Debug().Str("draft_id", draftID).Uint64("seq", seq).Msg("discarding superseded quote")
		return cur, nil
	}

	cur.MonthlyPayment = q.MonthlyPayment
	cur.TotalPayable = q.TotalAmount
	if err := u.drafts.Save(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}
