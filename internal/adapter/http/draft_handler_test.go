package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	stdhttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
	"goldloan-origination/internal/testutil/downstreammock"
	"goldloan-origination/internal/testutil/draftmock"
	"goldloan-origination/internal/usecase/origination"
	"goldloan-origination/internal/usecase/quote"
	"goldloan-origination/internal/usecase/verification"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func newHandler(repo *draftmock.Repo, customers *downstreammock.CustomerAPI, loans *downstreammock.LoanAPI, quoter *downstreammock.Quoter) *DraftHandler {
	log := zerolog.Nop()
	verifier := verification.NewUsecase(repo, customers, log)
	orig := origination.NewUsecase(repo, loans, &downstreammock.PhotoStore{}, &downstreammock.Renderer{}, verifier, origination.Limits{}, log)
	q := quote.NewUsecase(repo, quoter, log)
	return NewDraftHandler(orig, verifier, q)
}

func detailsDraft(draftID string, step draft.Step) *draft.Draft {
	return &draft.Draft{ID: 1, DraftID: draftID, Step: step, OtpStatus: draft.OtpIdle,
		Items: []draft.GoldItem{{Position: 0}}}
}

func ctxFor(e *echo.Echo, method, path string, body *bytes.Reader, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	var req *stdhttp.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	return c, rec
}

// -------- tests --------

func TestCreateDraft_Returns201WithBlankItem(t *testing.T) {
	e := newEchoWithValidator()
	repo := &draftmock.Repo{
		CreateFn: func(ctx context.Context, d *draft.Draft) error { return nil },
	}
	h := newHandler(repo, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	c, rec := ctxFor(e, stdhttp.MethodPost, "/drafts", nil, nil)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var got draft.Draft
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Step != draft.StepCustomerInfo || len(got.DraftID) != 32 || len(got.Items) != 1 {
		t.Fatalf("unexpected draft: %+v", got)
	}
}

func TestGetDraft_UnknownIs404(t *testing.T) {
	e := newEchoWithValidator()
	h := newHandler(&draftmock.Repo{}, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	c, rec := ctxFor(e, stdhttp.MethodGet, "/drafts/x", nil, map[string]string{"draft_id": "x"})
	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateCustomer_DuplicateMobilesKeepsDraft(t *testing.T) {
	e := newEchoWithValidator()
	d := detailsDraft("d1", draft.StepCustomerInfo)
	repo := &draftmock.Repo{
		GetByDraftIDFn: func(ctx context.Context, id string) (*draft.Draft, error) { return d, nil },
		SaveFn:         func(ctx context.Context, d *draft.Draft) error { return nil },
	}
	h := newHandler(repo, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	body := mustJSON(map[string]any{
		"name":           "Asha",
		"primary_mobile": "9876543210",
		"emergency_mobile": "9876543210",
	})
	c, rec := ctxFor(e, stdhttp.MethodPut, "/drafts/d1/customer", body, map[string]string{"draft_id": "d1"})
	if err := h.UpdateCustomer(c); err != nil {
		t.Fatalf("UpdateCustomer error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var got struct {
		Error string       `json:"error"`
		Draft *draft.Draft `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Draft == nil || got.Draft.PrimaryMobile != "9876543210" {
		t.Fatalf("typed values must survive: %+v", got.Draft)
	}
	if got.Error == "" {
		t.Fatalf("expected distinct-mobile complaint")
	}
}

func TestUpdateCustomer_NonDigitNationalIDIs422(t *testing.T) {
	e := newEchoWithValidator()
	h := newHandler(&draftmock.Repo{}, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	body := mustJSON(map[string]any{"national_id": "12ab"})
	c, rec := ctxFor(e, stdhttp.MethodPut, "/drafts/d1/customer", body, map[string]string{"draft_id": "d1"})
	if err := h.UpdateCustomer(c); err != nil {
		t.Fatalf("UpdateCustomer error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestSubmitOTP_WrongStepIs409(t *testing.T) {
	e := newEchoWithValidator()
	d := detailsDraft("d1", draft.StepCustomerInfo)
	repo := &draftmock.Repo{
		GetByDraftIDFn: func(ctx context.Context, id string) (*draft.Draft, error) { return d, nil },
	}
	h := newHandler(repo, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	c, rec := ctxFor(e, stdhttp.MethodPost, "/drafts/d1/otp", mustJSON(map[string]string{"code": "123456"}), map[string]string{"draft_id": "d1"})
	if err := h.SubmitOTP(c); err != nil {
		t.Fatalf("SubmitOTP error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSubmitOTP_NetworkFailureIs503WithDraft(t *testing.T) {
	e := newEchoWithValidator()
	d := detailsDraft("d1", draft.StepOtp)
	d.PrimaryMobile = "9876543210"
	repo := &draftmock.Repo{
		GetByDraftIDFn: func(ctx context.Context, id string) (*draft.Draft, error) { return d, nil },
		SaveFn:         func(ctx context.Context, d *draft.Draft) error { return nil },
	}
	customers := &downstreammock.CustomerAPI{
		VerifyOTPFn: func(ctx context.Context, email, otp, phone string) (string, error) {
			return "", downstream.ErrNetwork
		},
	}
	h := newHandler(repo, customers, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	c, rec := ctxFor(e, stdhttp.MethodPost, "/drafts/d1/otp", mustJSON(map[string]string{"code": "123456"}), map[string]string{"draft_id": "d1"})
	if err := h.SubmitOTP(c); err != nil {
		t.Fatalf("SubmitOTP error: %v", err)
	}
	if rec.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var got struct {
		Draft *draft.Draft `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Draft == nil || got.Draft.OtpStatus != draft.OtpIdle {
		t.Fatalf("network failure must re-arm to idle, got %+v", got.Draft)
	}
}

func TestRemoveItem_LastItemIs409(t *testing.T) {
	e := newEchoWithValidator()
	d := detailsDraft("d1", draft.StepLoanDetails)
	repo := &draftmock.Repo{
		GetByDraftIDFn: func(ctx context.Context, id string) (*draft.Draft, error) { return d, nil },
	}
	h := newHandler(repo, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	c, rec := ctxFor(e, stdhttp.MethodDelete, "/drafts/d1/items/0", nil, map[string]string{"draft_id": "d1"})
	c.SetParamNames("draft_id", "position")
	c.SetParamValues("d1", "0")
	if err := h.RemoveItem(c); err != nil {
		t.Fatalf("RemoveItem error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestStagePhotos_MultipartFlow(t *testing.T) {
	e := newEchoWithValidator()
	d := detailsDraft("d1", draft.StepLoanDetails)
	repo := &draftmock.Repo{
		GetByDraftIDFn: func(ctx context.Context, id string) (*draft.Draft, error) { return d, nil },
	}
	h := newHandler(repo, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, spec := range []struct{ name, ctype string }{
		{"a.jpg", "image/jpeg"},
		{"b.txt", "text/plain"},
	} {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="photos"; filename="`+spec.name+`"`)
		hdr.Set("Content-Type", spec.ctype)
		pw, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		pw.Write([]byte("data"))
	}
	mw.Close()

	req := httptest.NewRequest(stdhttp.MethodPost, "/drafts/d1/items/0/photos", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("draft_id", "group")
	c.SetParamValues("d1", "0")

	if err := h.StagePhotos(c); err != nil {
		t.Fatalf("StagePhotos error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var got struct {
		Staged  int `json:"staged"`
		Dropped int `json:"dropped"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Staged != 1 {
		t.Fatalf("staged = %d, want 1 (text file filtered)", got.Staged)
	}
}

func TestStagePhotos_BadGroupIs400(t *testing.T) {
	e := newEchoWithValidator()
	h := newHandler(&draftmock.Repo{}, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	c, rec := ctxFor(e, stdhttp.MethodPost, "/drafts/d1/items/x/photos", nil, nil)
	c.SetParamNames("draft_id", "group")
	c.SetParamValues("d1", "x")
	if err := h.StagePhotos(c); err != nil {
		t.Fatalf("StagePhotos error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateTerms_FallbackQuoteApplied(t *testing.T) {
	e := newEchoWithValidator()
	d := detailsDraft("d1", draft.StepLoanDetails)
	repo := &draftmock.Repo{
		GetByDraftIDFn: func(ctx context.Context, id string) (*draft.Draft, error) { return d, nil },
		SaveFn:         func(ctx context.Context, d *draft.Draft) error { return nil },
	}
	quoter := &downstreammock.Quoter{
		QuoteFn: func(ctx context.Context, req downstream.QuoteRequest) (downstream.Quote, error) {
			return downstream.Quote{}, downstream.ErrNetwork
		},
	}
	h := newHandler(repo, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, quoter)

	body := mustJSON(map[string]any{
		"principal_amount":      100000,
		"interest_rate_percent": 18,
		"term_months":           12,
	})
	c, rec := ctxFor(e, stdhttp.MethodPut, "/drafts/d1/terms", body, map[string]string{"draft_id": "d1"})
	if err := h.UpdateTerms(c); err != nil {
		t.Fatalf("UpdateTerms error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var got draft.Draft
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.TotalPayable != 118000 || got.MonthlyPayment != 9833.33 {
		t.Fatalf("fallback quote: total=%v monthly=%v", got.TotalPayable, got.MonthlyPayment)
	}
}

func TestSubmit_ValidationFailureIs422(t *testing.T) {
	e := newEchoWithValidator()
	d := detailsDraft("d1", draft.StepLoanDetails)
	d.NationalID = "123" // too short
	repo := &draftmock.Repo{
		GetByDraftIDFn: func(ctx context.Context, id string) (*draft.Draft, error) { return d, nil },
	}
	h := newHandler(repo, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	c, rec := ctxFor(e, stdhttp.MethodPost, "/drafts/d1/submit", nil, map[string]string{"draft_id": "d1"})
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var got ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Error == "" {
		t.Fatalf("expected validation message, got %+v", got)
	}
}

func TestCancel_Returns204(t *testing.T) {
	e := newEchoWithValidator()
	d := detailsDraft("d1", draft.StepLoanDetails)
	deleted := false
	repo := &draftmock.Repo{
		GetByDraftIDFn: func(ctx context.Context, id string) (*draft.Draft, error) { return d, nil },
		DeleteFn:       func(ctx context.Context, d *draft.Draft) error { deleted = true; return nil },
	}
	h := newHandler(repo, &downstreammock.CustomerAPI{}, &downstreammock.LoanAPI{}, &downstreammock.Quoter{})

	c, rec := ctxFor(e, stdhttp.MethodDelete, "/drafts/d1", nil, map[string]string{"draft_id": "d1"})
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if !deleted {
		t.Fatalf("repository delete not reached")
	}
}
