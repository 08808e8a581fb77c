package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"cockpityara/internal/domain/project"
)

// ProjectLocalRepository is the per-device system of record for local-only
// client projects. Records created here carry a local-prefixed id and are
// never written to the remote store.
type ProjectLocalRepository struct {
	db *gorm.DB
}

func NewProjectLocalRepository(db *gorm.DB) *ProjectLocalRepository {
	return &ProjectLocalRepository{db: db}
}

// GetAll returns every local record sorted by updated_at descending.
// An empty store yields an empty slice, not an error.
func (r *ProjectLocalRepository) GetAll(ctx context.Context) ([]project.Project, error) {
	var recs []project.Project
	err := r.db.WithContext(ctx).Order("updated_at desc").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// GetByID returns the record or (nil, nil) when the id is unknown.
func (r *ProjectLocalRepository) GetByID(ctx context.Context, id string) (*project.Project, error) {
	var rec project.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Add assigns a local id and timestamps, persists the record, and returns
// the refreshed full list.
func (r *ProjectLocalRepository) Add(ctx context.Context, rec *project.Project) ([]project.Project, error) {
	now := time.Now()
	rec.ID = project.NewLocalID()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Messages == nil {
		rec.Messages = project.MessageList{}
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return r.GetAll(ctx)
}

// PartialUpdate carries the mutable fields of an update; nil means unchanged.
type PartialUpdate struct {
	Name           *string
	Phone          *string
	Status         *project.Status
	EstimatedValue *float64
	Messages       *project.MessageList
}

// Update merges partial fields into the existing record and refreshes
// updated_at. Returns (nil, nil) when the id does not exist.
func (r *ProjectLocalRepository) Update(ctx context.Context, id string, fields PartialUpdate) (*project.Project, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	if fields.Name != nil {
		rec.Name = *fields.Name
	}
	if fields.Phone != nil {
		rec.Phone = *fields.Phone
	}
	if fields.Status != nil {
		rec.Status = *fields.Status
	}
	if fields.EstimatedValue != nil {
		rec.EstimatedValue = *fields.EstimatedValue
	}
	if fields.Messages != nil {
		rec.Messages = *fields.Messages
	}
	rec.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// Remove deletes by id and returns the refreshed list. Removing an unknown
// id is not an error.
func (r *ProjectLocalRepository) Remove(ctx context.Context, id string) ([]project.Project, error) {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&project.Project{}).Error; err != nil {
		return nil, err
	}
	return r.GetAll(ctx)
}
