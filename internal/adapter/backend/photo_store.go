package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
)

// PhotoClient implements downstream.PhotoStore against the loan-photo
// endpoint: one multipart call per group, all pending files of that group
// in the same call.
type PhotoClient struct{ c *Client }

func NewPhotoClient(c *Client) *PhotoClient { return &PhotoClient{c: c} }

type photoListResponse struct {
	Data []downstream.StoredPhoto `json:"data"`
}

func (pc *PhotoClient) Upload(ctx context.Context, loanID string, group draft.PhotoGroup, description string, files []downstream.UploadFile) ([]downstream.StoredPhoto, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("goldItemIndex", strconv.Itoa(group.WireIndex())); err != nil {
		return nil, err
	}
	if err := w.WriteField("description", description); err != nil {
		return nil, err
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename=%q`, f.Name))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/loans/%s/photos", pc.c.baseURL, loanID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out photoListResponse
	if err := pc.c.send(req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (pc *PhotoClient) Fetch(ctx context.Context, loanID string) ([]downstream.StoredPhoto, error) {
	var out photoListResponse
	path := fmt.Sprintf("/loans/%s/photos", loanID)
	if err := pc.c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
