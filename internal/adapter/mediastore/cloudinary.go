// Package mediastore stores pledge photos in Cloudinary as an
// alternative to the loan backend's photo endpoint. The active store is
// chosen by configuration at startup.
package mediastore

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/admin"
	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
)

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    zerolog.Logger
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string, log zerolog.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder, log: log}, nil
}

// publicID embeds the loan and group so Fetch can reassemble the photo
// set without a side lookup. Layout: <folder>/<loanID>/g<wireIndex>/<random>.
func (s *CloudinaryStore) publicID(loanID string, group draft.PhotoGroup) string {
	return fmt.Sprintf("%s/g%d/%s", loanID, group.WireIndex(), uuid.NewString())
}

func (s *CloudinaryStore) Upload(ctx context.Context, loanID string, group draft.PhotoGroup, description string, files []downstream.UploadFile) ([]downstream.StoredPhoto, error) {
	stored := make([]downstream.StoredPhoto, 0, len(files))
	for _, f := range files {
		res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(f.Content), uploader.UploadParams{
			Folder:   s.folder,
			PublicID: s.publicID(loanID, group),
		})
		if err != nil {
			return stored, fmt.Errorf("%w: %v", downstream.ErrNetwork, err)
		}
		s.log.Debug().Str("loan_id", loanID).Str("public_id", res.PublicID).Msg("photo stored")
		stored = append(stored, downstream.StoredPhoto{
			ID:            res.PublicID,
			GoldItemIndex: group.WireIndex(),
			URL:           res.SecureURL,
		})
	}
	return stored, nil
}

func (s *CloudinaryStore) Fetch(ctx context.Context, loanID string) ([]downstream.StoredPhoto, error) {
	res, err := s.cld.Admin.Assets(ctx, admin.AssetsParams{
		Prefix:     fmt.Sprintf("%s/%s/", s.folder, loanID),
		MaxResults: 100,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", downstream.ErrNetwork, err)
	}
	photos := make([]downstream.StoredPhoto, 0, len(res.Assets))
	for _, a := range res.Assets {
		photos = append(photos, downstream.StoredPhoto{
			ID:            a.PublicID,
			GoldItemIndex: groupIndexFromPublicID(a.PublicID),
			URL:           a.SecureURL,
		})
	}
	return photos, nil
}

func groupIndexFromPublicID(publicID string) int {
	for _, part := range strings.Split(publicID, "/") {
		if len(part) > 1 && part[0] == 'g' {
			if n, err := strconv.Atoi(part[1:]); err == nil {
				return n
			}
		}
	}
	return 0
}
