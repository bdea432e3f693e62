package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"goldloan-origination/internal/domain/downstream"
)

// LoanClient implements downstream.LoanAPI and downstream.InterestQuoter.
type LoanClient struct{ c *Client }

func NewLoanClient(c *Client) *LoanClient { return &LoanClient{c: c} }

type createLoanResponse struct {
	Data struct {
		ID        string    `json:"_id"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"data"`
}

func (lc *LoanClient) CreateLoan(ctx context.Context, p downstream.LoanPayload) (downstream.CreatedLoan, error) {
	var out createLoanResponse
	path := fmt.Sprintf("/%s/loans", rolePrefix(ctx))
	if err := lc.c.doJSON(ctx, http.MethodPost, path, p, &out); err != nil {
		return downstream.CreatedLoan{}, err
	}
	if out.Data.ID == "" {
		return downstream.CreatedLoan{}, &downstream.RemoteRejection{
			Status:   http.StatusOK,
			Messages: []string{"malformed response body"},
		}
	}
	return downstream.CreatedLoan{LoanID: out.Data.ID, DisbursedAt: out.Data.CreatedAt}, nil
}

// Quote calls the shared (non role-prefixed) interest endpoint. Any error
// triggers the caller's local fallback.
func (lc *LoanClient) Quote(ctx context.Context, req downstream.QuoteRequest) (downstream.Quote, error) {
	var out downstream.Quote
	if err := lc.c.doJSON(ctx, http.MethodPost, "/loans/calculate-interest", req, &out); err != nil {
		return downstream.Quote{}, err
	}
	if out.MonthlyPayment <= 0 || out.TotalAmount <= 0 {
		return downstream.Quote{}, &downstream.RemoteRejection{
			Status:   http.StatusOK,
			Messages: []string{"malformed response body"},
		}
	}
	return out, nil
}
