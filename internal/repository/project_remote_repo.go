package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"cockpityara/internal/domain/project"
)

// ProjectRemoteRepository mirrors the clients collection in the cloud store.
// Records inserted here get a remote-assigned id; local-prefixed records are
// never written through this repository.
type ProjectRemoteRepository struct {
	db       *gorm.DB
	notifier *RemoteNotifier
}

func NewProjectRemoteRepository(db *gorm.DB, notifier *RemoteNotifier) *ProjectRemoteRepository {
	return &ProjectRemoteRepository{db: db, notifier: notifier}
}

// List returns every remote record sorted by updated_at descending.
func (r *ProjectRemoteRepository) List(ctx context.Context) ([]project.Project, error) {
	var recs []project.Project
	err := r.db.WithContext(ctx).Order("updated_at desc").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Get returns the record or (nil, nil) when the id is unknown.
func (r *ProjectRemoteRepository) Get(ctx context.Context, id string) (*project.Project, error) {
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

// Insert assigns a remote id and created_at, persists, and returns the id.
func (r *ProjectRemoteRepository) Insert(ctx context.Context, rec *project.Project) (string, error) {
	if rec.ID != "" && project.IsLocalID(rec.ID) {
		return "", errors.New("local-prefixed record cannot be inserted remotely")
	}

	now := time.Now()
	rec.ID = project.NewRemoteID()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Messages == nil {
		rec.Messages = project.MessageList{}
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", err
	}
	r.notifyChanged(ctx)
	return rec.ID, nil
}

// UpdateMessages overwrites the messages array and updated_at, last writer
// wins. No optimistic-concurrency token is applied.
func (r *ProjectRemoteRepository) UpdateMessages(ctx context.Context, id string, msgs project.MessageList, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&project.Project{}).Where("id = ?", id).Updates(map[string]any{
		"messages":   msgs,
		"updated_at": updatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.notifyChanged(ctx)
	return nil
}

// Update merges partial fields into the remote record.
func (r *ProjectRemoteRepository) Update(ctx context.Context, id string, fields PartialUpdate) (*project.Project, error) {
	updates := map[string]any{"updated_at": time.Now()}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.Phone != nil {
		updates["phone"] = *fields.Phone
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if fields.EstimatedValue != nil {
		updates["estimated_value"] = *fields.EstimatedValue
	}
	if fields.Messages != nil {
		updates["messages"] = *fields.Messages
	}

	res := r.db.WithContext(ctx).Model(&project.Project{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	r.notifyChanged(ctx)
	return r.Get(ctx, id)
}

func (r *ProjectRemoteRepository) notifyChanged(ctx context.Context) {
	if r.notifier != nil {
		r.notifier.Notify(ctx)
	}
}
