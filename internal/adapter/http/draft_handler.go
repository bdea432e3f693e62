package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
	"goldloan-origination/internal/usecase/origination"
	"goldloan-origination/internal/usecase/quote"
	"goldloan-origination/internal/usecase/verification"
)

type DraftHandler struct {
	orig     *origination.Usecase
	verifier *verification.Usecase
	quoter   *quote.Usecase
}

func NewDraftHandler(orig *origination.Usecase, verifier *verification.Usecase, quoter *quote.Usecase) *DraftHandler {
	return &DraftHandler{orig: orig, verifier: verifier, quoter: quoter}
}

func (h *DraftHandler) Create(c echo.Context) error {
	d, err := h.orig.Start(c.Request().Context())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DraftHandler) Get(c echo.Context) error {
	d, err := h.orig.Get(c.Request().Context(), c.Param("draft_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

type updateCustomerReq struct {
	NationalID        string `json:"national_id"        validate:"omitempty,digitsonly,max=12"`
	Name              string `json:"name"               validate:"max=120"`
	Email             string `json:"email"              validate:"omitempty,email"`
	PrimaryMobile     string `json:"primary_mobile"     validate:"max=20"`
	SecondaryMobile   string `json:"secondary_mobile"   validate:"max=20"`
	EmergencyMobile   string `json:"emergency_mobile"   validate:"max=20"`
	EmergencyRelation string `json:"emergency_relation" validate:"max=60"`
	PresentAddress    string `json:"present_address"`
	PermanentAddress  string `json:"permanent_address"`
}

func (h *DraftHandler) UpdateCustomer(c echo.Context) error {
	var req updateCustomerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	d, err := h.orig.UpdateCustomer(c.Request().Context(), c.Param("draft_id"), origination.CustomerUpdate(req))
	if err != nil {
		// duplicate mobiles keep the typed values; return the draft state
		// alongside the complaint so the caller stays in sync
		var dup *draft.DuplicateContactError
		if errors.As(err, &dup) && d != nil {
			return c.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error": dup.Error(),
				"draft": d,
			})
		}
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DraftHandler) SubmitCustomer(c echo.Context) error {
	d, err := h.verifier.SubmitCustomerInfo(c.Request().Context(), c.Param("draft_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

type otpReq struct {
	Code string `json:"code"`
}

func (h *DraftHandler) SubmitOTP(c echo.Context) error {
	var req otpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	d, err := h.verifier.SubmitOTP(c.Request().Context(), c.Param("draft_id"), req.Code)
	if err != nil {
		// OTP outcomes travel with the draft: the status field tells the
		// caller whether to re-prompt (invalid) or retry later (idle)
		if d != nil {
			status := statusForOtpErr(err)
			return c.JSON(status, map[string]any{
				"error": err.Error(),
				"draft": d,
			})
		}
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func statusForOtpErr(err error) int {
	if errors.Is(err, downstream.ErrNetwork) {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnprocessableEntity
}

func (h *DraftHandler) AddItem(c echo.Context) error {
	d, err := h.orig.AddItem(c.Request().Context(), c.Param("draft_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

type updateItemReq struct {
	Description string  `json:"description"  validate:"max=200"`
	GrossWeight float64 `json:"gross_weight" validate:"gte=0"`
	NetWeight   float64 `json:"net_weight"   validate:"gte=0"`
}

func (h *DraftHandler) UpdateItem(c echo.Context) error {
	pos, err := itemPosition(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	var req updateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	d, err := h.orig.UpdateItem(c.Request().Context(), c.Param("draft_id"), pos, req.Description, req.GrossWeight, req.NetWeight)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DraftHandler) RemoveItem(c echo.Context) error {
	pos, err := itemPosition(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	d, err := h.orig.RemoveItem(c.Request().Context(), c.Param("draft_id"), pos)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// StagePhotos handles both the per-item and the all-items route; the
// group segment is either a position or the literal "all".
func (h *DraftHandler) StagePhotos(c echo.Context) error {
	group, err := draft.ParseGroup(c.Param("group"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "multipart form required"})
	}
	files, err := readUploads(form.File["photos"])
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	d, rep, err := h.orig.StagePhotos(c.Request().Context(), c.Param("draft_id"), group, files)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"staged":  rep.Staged,
		"dropped": rep.Dropped,
		"draft":   d,
	})
}

type termsReq struct {
	PrincipalAmount     float64 `json:"principal_amount"      validate:"gte=0,dec2"`
	InterestRatePercent float64 `json:"interest_rate_percent" validate:"gte=0,dec2"`
	TermMonths          int     `json:"term_months"           validate:"gte=0"`
}

func (h *DraftHandler) UpdateTerms(c echo.Context) error {
	var req termsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	d, err := h.quoter.UpdateTerms(c.Request().Context(), c.Param("draft_id"), req.PrincipalAmount, req.InterestRatePercent, req.TermMonths)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DraftHandler) Submit(c echo.Context) error {
	res, err := h.orig.Submit(c.Request().Context(), c.Param("draft_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *DraftHandler) Cancel(c echo.Context) error {
	if err := h.orig.Cancel(c.Request().Context(), c.Param("draft_id")); err != nil {
		return writeDomainErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func readUploads(headers []*multipart.FileHeader) ([]downstream.UploadFile, error) {
	out := make([]downstream.UploadFile, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, downstream.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return out, nil
}
