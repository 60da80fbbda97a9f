package content

import (
	"context"
	"fmt"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists content records.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to content operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOne loads a record. Singletons use an empty resourceID.
func (r *Repository) FindOne(ctx context.Context, resourceType, resourceID string) (*models.ContentRecord, error) {
	var rec models.ContentRecord
	if err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns every record of a resource type ordered by position.
func (r *Repository) List(ctx context.Context, resourceType string) ([]models.ContentRecord, error) {
	var recs []models.ContentRecord
	if err := r.db.WithContext(ctx).
		Where("resource_type = ?", resourceType).
		Order("position ASC").
		Order("created_at ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Upsert inserts the record or replaces the payload of the existing one.
func (r *Repository) Upsert(ctx context.Context, rec *models.ContentRecord) error {
	if rec == nil {
		return fmt.Errorf("content record is required")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_type"}, {Name: "resource_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_by", "updated_at"}),
	}).Create(rec).Error
}

// Replace overwrites the payload of an existing record.
// It returns gorm.ErrRecordNotFound when the record does not exist.
func (r *Repository) Replace(ctx context.Context, resourceType, resourceID string, payload map[string]any, updatedBy *uuid.UUID) (*models.ContentRecord, error) {
	var out *models.ContentRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.ContentRecord
		if err := tx.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
			First(&rec).Error; err != nil {
			return err
		}
		rec.Payload = payload
		rec.UpdatedBy = updatedBy
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		out = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Append stores a new collection record after the current last position.
func (r *Repository) Append(ctx context.Context, rec *models.ContentRecord) error {
	if rec == nil {
		return fmt.Errorf("content record is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int64
		if err := tx.Model(&models.ContentRecord{}).
			Where("resource_type = ?", rec.ResourceType).
			Select("COALESCE(MAX(position), -1)").
			Row().
			Scan(&maxPos); err != nil {
			return err
		}
		rec.Position = int(maxPos) + 1
		return tx.Create(rec).Error
	})
}

// Delete removes a record and reports whether one existed.
func (r *Repository) Delete(ctx context.Context, resourceType, resourceID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Delete(&models.ContentRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
