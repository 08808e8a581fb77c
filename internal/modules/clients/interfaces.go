package clients

import (
	"context"
	"time"

	"cockpityara/internal/domain/project"
	"cockpityara/internal/repository"
)

// LocalStore is the per-device system of record for local-prefixed ids
type LocalStore interface {
	GetAll(ctx context.Context) ([]project.Project, error)
	GetByID(ctx context.Context, id string) (*project.Project, error)
	Add(ctx context.Context, rec *project.Project) ([]project.Project, error)
	Update(ctx context.Context, id string, fields repository.PartialUpdate) (*project.Project, error)
	Remove(ctx context.Context, id string) ([]project.Project, error)
}

// RemoteStore is the cloud mirror of the clients collection
type RemoteStore interface {
	List(ctx context.Context) ([]project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	Insert(ctx context.Context, rec *project.Project) (string, error)
	UpdateMessages(ctx context.Context, id string, msgs project.MessageList, updatedAt time.Time) error
	Update(ctx context.Context, id string, fields repository.PartialUpdate) (*project.Project, error)
}

// ChangeFeed delivers coalesced change ticks for the remote collection
type ChangeFeed interface {
	Subscribe() (<-chan struct{}, func())
}

// Broadcaster pushes snapshots to connected UIs
type Broadcaster interface {
	BroadcastList(list []project.Project, state SyncState)
	BroadcastDoc(rec *project.Project)
	BroadcastState(state SyncState)
}
