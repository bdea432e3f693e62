package draft

import "context"

type Repository interface {
	Create(ctx context.Context, d *Draft) error
	GetByDraftID(ctx context.Context, draftID string) (*Draft, error)
	// Save persists the draft's scalar fields only; items and photos have
	// their own mutation methods.
	Save(ctx context.Context, d *Draft) error

	AppendItem(ctx context.Context, d *Draft, item *GoldItem) error
	// RemoveItem deletes the item at position, discards its staged photo
	// group, and shifts higher positions (items and their photo groups)
	// down by one.
	RemoveItem(ctx context.Context, d *Draft, position int) error

	StagePhotos(ctx context.Context, d *Draft, photos []StagedPhoto) error
	MarkPhotosUploaded(ctx context.Context, d *Draft, group PhotoGroup) error

	// Delete soft-deletes the draft together with its items and photos
	// (workflow reset or cancel).
	Delete(ctx context.Context, d *Draft) error
}
