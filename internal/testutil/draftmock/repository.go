package draftmock

import (
	"context"

	domain "goldloan-origination/internal/domain/draft"
)

// Repo is a function-backed mock that satisfies draft.Repository. Only the
// methods a test cares about need hooks; the rest default to no-ops.
type Repo struct {
	CreateFn             func(ctx context.Context, d *domain.Draft) error
	GetByDraftIDFn       func(ctx context.Context, draftID string) (*domain.Draft, error)
	SaveFn               func(ctx context.Context, d *domain.Draft) error
	AppendItemFn         func(ctx context.Context, d *domain.Draft, item *domain.GoldItem) error
	RemoveItemFn         func(ctx context.Context, d *domain.Draft, position int) error
	StagePhotosFn        func(ctx context.Context, d *domain.Draft, photos []domain.StagedPhoto) error
	MarkPhotosUploadedFn func(ctx context.Context, d *domain.Draft, group domain.PhotoGroup) error
	DeleteFn             func(ctx context.Context, d *domain.Draft) error
}

func (m *Repo) Create(ctx context.Context, d *domain.Draft) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByDraftID(ctx context.Context, draftID string) (*domain.Draft, error) {
	if m.GetByDraftIDFn != nil {
		return m.GetByDraftIDFn(ctx, draftID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, d *domain.Draft) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}

func (m *Repo) AppendItem(ctx context.Context, d *domain.Draft, item *domain.GoldItem) error {
	if m.AppendItemFn != nil {
		return m.AppendItemFn(ctx, d, item)
	}
	d.Items = append(d.Items, *item)
	return nil
}

func (m *Repo) RemoveItem(ctx context.Context, d *domain.Draft, position int) error {
	if m.RemoveItemFn != nil {
		return m.RemoveItemFn(ctx, d, position)
	}
	return nil
}

func (m *Repo) StagePhotos(ctx context.Context, d *domain.Draft, photos []domain.StagedPhoto) error {
	if m.StagePhotosFn != nil {
		return m.StagePhotosFn(ctx, d, photos)
	}
	d.Photos = append(d.Photos, photos...)
	return nil
}

func (m *Repo) MarkPhotosUploaded(ctx context.Context, d *domain.Draft, group domain.PhotoGroup) error {
	if m.MarkPhotosUploadedFn != nil {
		return m.MarkPhotosUploadedFn(ctx, d, group)
	}
	for i := range d.Photos {
		if d.Photos[i].GroupIndex == group.WireIndex() {
			d.Photos[i].Uploaded = true
		}
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, d *domain.Draft) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, d)
	}
	return nil
}
