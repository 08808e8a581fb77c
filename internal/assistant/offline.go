package assistant

import (
	"context"

	"cockpityara/internal/domain/project"
)

// OfflineGateway is the gateway used when no API credential is configured.
// Chat still works with a fixed reply; every other capability reports
// ErrNoCredential so handlers can show a one-time notice.
type OfflineGateway struct{}

var _ Gateway = (*OfflineGateway)(nil)

func NewOfflineGateway() *OfflineGateway { return &OfflineGateway{} }

func (*OfflineGateway) AnalyzeDraft(ctx context.Context, prompt string, image *Image) (string, error) {
	return OfflineReply, nil
}

func (*OfflineGateway) Speak(ctx context.Context, text string) error {
	return nil
}

func (*OfflineGateway) GenerateText(ctx context.Context, prompt string, images []Image) (string, error) {
	return "", ErrNoCredential
}

func (*OfflineGateway) GenerateImage(ctx context.Context, images []Image, prompt string) (*Image, error) {
	return nil, ErrNoCredential
}

func (*OfflineGateway) SearchGrounded(ctx context.Context, prompt, location string) (*GroundedResult, error) {
	return nil, ErrNoCredential
}

func (*OfflineGateway) EstimateCosts(ctx context.Context, p *project.Project, marketContext string) (*CostEstimate, error) {
	return nil, ErrNoCredential
}
