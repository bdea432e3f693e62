package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"goldloan-origination/internal/domain/draft"
)

type DraftRepository struct{ db *gorm.DB }

func NewDraftRepository(db *gorm.DB) *DraftRepository { return &DraftRepository{db: db} }

func (r *DraftRepository) Create(ctx context.Context, d *draft.Draft) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DraftRepository) GetByDraftID(ctx context.Context, draftID string) (*draft.Draft, error) {
	var out draft.Draft
	res := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("draft_id = ?", draftID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, draft.ErrNotFound
	}
	return &out, res.Error
}

// Save writes the draft row only. Items and photos are mutated through
// their own methods so a scalar save never clobbers concurrent staging.
func (r *DraftRepository) Save(ctx context.Context, d *draft.Draft) error {
	return r.db.WithContext(ctx).Omit("Items", "Photos").Save(d).Error
}

func (r *DraftRepository) AppendItem(ctx context.Context, d *draft.Draft, item *draft.GoldItem) error {
	item.DraftRef = d.ID
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return err
	}
	d.Items = append(d.Items, *item)
	return nil
}

// RemoveItem deletes one item row with its staged photo group, then shifts
// the positions above it down by one so photo groups stay attached to the
// same physical items. The all-items group is keyed negative and is never
// touched by the shift.
func (r *DraftRepository) RemoveItem(ctx context.Context, d *draft.Draft, position int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("draft_ref = ? AND position = ?", d.ID, position).
			Delete(&draft.GoldItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("draft_ref = ? AND group_index = ?", d.ID, position).
			Delete(&draft.StagedPhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&draft.GoldItem{}).
			Where("draft_ref = ? AND position > ?", d.ID, position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&draft.StagedPhoto{}).
			Where("draft_ref = ? AND group_index > ?", d.ID, position).
			UpdateColumn("group_index", gorm.Expr("group_index - 1")).Error
	})
	if err != nil {
		return err
	}

	items := d.Items[:0]
	for _, it := range d.Items {
		if it.Position == position {
			continue
		}
		if it.Position > position {
			it.Position--
		}
		items = append(items, it)
	}
	d.Items = items

	photos := d.Photos[:0]
	for _, p := range d.Photos {
		if p.GroupIndex == position {
			continue
		}
		if p.GroupIndex > position {
			p.GroupIndex--
		}
		photos = append(photos, p)
	}
	d.Photos = photos
	return nil
}

func (r *DraftRepository) StagePhotos(ctx context.Context, d *draft.Draft, photos []draft.StagedPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	for i := range photos {
		photos[i].DraftRef = d.ID
	}
	if err := r.db.WithContext(ctx).Create(&photos).Error; err != nil {
		return err
	}
	d.Photos = append(d.Photos, photos...)
	return nil
}

func (r *DraftRepository) MarkPhotosUploaded(ctx context.Context, d *draft.Draft, group draft.PhotoGroup) error {
	err := r.db.WithContext(ctx).Model(&draft.StagedPhoto{}).
		Where("draft_ref = ? AND group_index = ?", d.ID, group.WireIndex()).
		UpdateColumn("uploaded", true).Error
	if err != nil {
		return err
	}
	for i := range d.Photos {
		if d.Photos[i].GroupIndex == group.WireIndex() {
			d.Photos[i].Uploaded = true
		}
	}
	return nil
}

// Delete retires the draft: the row is soft-deleted for audit, item and
// photo rows (blob payloads included) are removed outright.
func (r *DraftRepository) Delete(ctx context.Context, d *draft.Draft) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("draft_ref = ?", d.ID).Delete(&draft.StagedPhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Where("draft_ref = ?", d.ID).Delete(&draft.GoldItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(d).Error
	})
}
