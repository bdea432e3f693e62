package backend

import (
	"context"
	"fmt"
	"net/http"

	"goldloan-origination/internal/domain/downstream"
)

// CustomerClient implements downstream.CustomerAPI against the role-scoped
// backend.
type CustomerClient struct{ c *Client }

func NewCustomerClient(c *Client) *CustomerClient { return &CustomerClient{c: c} }

type checkNationalIDResponse struct {
	Exists          bool                         `json:"exists"`
	CustomerDetails *downstream.CustomerProfile  `json:"customerDetails"`
}

func (cc *CustomerClient) CheckNationalID(ctx context.Context, nationalID string) (downstream.LookupResult, error) {
	var out checkNationalIDResponse
	path := fmt.Sprintf("/%s/check-aadhar/%s", rolePrefix(ctx), nationalID)
	if err := cc.c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return downstream.LookupResult{}, err
	}
	return downstream.LookupResult{Exists: out.Exists, Profile: out.CustomerDetails}, nil
}

func (cc *CustomerClient) Create(ctx context.Context, in downstream.CreateCustomerInput) error {
	path := fmt.Sprintf("/%s/customers", rolePrefix(ctx))
	return cc.c.doJSON(ctx, http.MethodPost, path, in, nil)
}

type verifyOTPRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	PhoneNumber string `json:"phoneNumber"`
}

type verifyOTPResponse struct {
	Customer struct {
		ID string `json:"_id"`
	} `json:"customer"`
}

func (cc *CustomerClient) VerifyOTP(ctx context.Context, email, otp, phone string) (string, error) {
	var out verifyOTPResponse
	path := fmt.Sprintf("/%s/verify-customer-otp", rolePrefix(ctx))
	in := verifyOTPRequest{Email: email, OTP: otp, PhoneNumber: phone}
	if err := cc.c.doJSON(ctx, http.MethodPost, path, in, &out); err != nil {
		return "", err
	}
	if out.Customer.ID == "" {
		return "", &downstream.RemoteRejection{Status: http.StatusOK, Messages: []string{"malformed response body"}}
	}
	return out.Customer.ID, nil
}
