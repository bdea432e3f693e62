package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
	"goldloan-origination/internal/usecase/origination"
)

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// messageDetails splits a multi-line error into a details list; a single
// message stays a single block (display policy: replace, never accumulate).
func messageDetails(messages []string) []FieldError {
	if len(messages) < 2 {
		return nil
	}
	out := make([]FieldError, 0, len(messages))
	for _, m := range messages {
		out = append(out, FieldError{Field: "_", Message: m})
	}
	return out
}

// writeDomainErr maps the domain error taxonomy onto HTTP responses.
func writeDomainErr(c echo.Context, err error) error {
	var ve *draft.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   ve.Error(),
			Details: messageDetails(ve.Messages),
		})
	}
	var dup *draft.DuplicateContactError
	if errors.As(err, &dup) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: dup.Error()})
	}
	var partial *origination.UploadPartialFailure
	if errors.As(err, &partial) {
		// the loan exists; surface its id so the caller can recover
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   partial.Error(),
			LoanID:  partial.LoanID,
			Details: messageDetails(partial.Errors),
		})
	}
	var rr *downstream.RemoteRejection
	if errors.As(err, &rr) {
		status := rr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return c.JSON(status, ErrorResponse{
			Error:   rr.Error(),
			Details: messageDetails(rr.Messages),
		})
	}

	switch {
	case errors.Is(err, draft.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, draft.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "operation not allowed on the current step"})
	case errors.Is(err, draft.ErrLastItem):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "the last gold item cannot be removed"})
	case errors.Is(err, draft.ErrNotVerified):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "customer identity has not been verified"})
	case errors.Is(err, draft.ErrNoImageFiles):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "no image files in the selection"})
	case errors.Is(err, downstream.ErrNetwork):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func itemPosition(c echo.Context) (int, error) {
	g, err := draft.ParseGroup(c.Param("position"))
	if err != nil {
		return 0, err
	}
	pos, ok := g.Position()
	if !ok {
		return 0, errors.New("item position required")
	}
	return pos, nil
}
