package workshop

import (
	"context"

	"cockpityara/internal/domain/project"
	"cockpityara/internal/repository"
)

// Orchestrator is the slice of the sync layer the workshop tools need
type Orchestrator interface {
	GetClient(ctx context.Context, id string) (*project.Project, error)
	AppendExchange(ctx context.Context, id string, msgs ...project.Message) (*project.Project, error)
	UpdateClient(ctx context.Context, id string, fields repository.PartialUpdate) (*project.Project, error)
	StillActive(id string) bool
}

// CreditLedger charges assistant usage against the profile balance
type CreditLedger interface {
	SpendCredits(ctx context.Context, amount int64, note string) (int64, error)
	RefundCredits(ctx context.Context, amount int64, note string) (int64, error)
}
