// Package assistant wraps the external generative-AI service behind a fixed
// set of capability contracts. Every call is a single request/response with
// no retry; callers treat any failure as "feature unavailable" and leave
// prior state untouched.
package assistant

import (
	"context"
	"errors"

	"cockpityara/internal/domain/project"
)

var (
	// ErrNoCredential marks the recognized steady state of a missing API
	// key. It is distinct from transient failures and is never surfaced as
	// an error to the chat flow.
	ErrNoCredential = errors.New("assistant credential not configured")

	// ErrUnsupported marks capabilities this backend does not provide
	ErrUnsupported = errors.New("assistant capability not supported")
)

// OfflineReply is the sentinel chat answer when no credential is configured
const OfflineReply = "A assistente Yara está offline no momento. Configure sua chave de API nas configurações para ativar as respostas inteligentes."

// Image is an encoded media payload handed to the assistant
type Image struct {
	MediaType string // e.g. image/jpeg
	Data      string // base64-encoded bytes
}

// GroundedResult is a search answer with its source citations
type GroundedResult struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Source is a single grounded-search citation
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CostEstimate is the structured output of a cost estimation call
type CostEstimate struct {
	MaterialCost float64 `json:"material_cost"`
	LaborCost    float64 `json:"labor_cost"`
}

// Gateway is the request/response boundary to the generative-AI service
type Gateway interface {
	// AnalyzeDraft answers a chat turn about a project draft. When no
	// credential is configured it returns OfflineReply and a nil error.
	AnalyzeDraft(ctx context.Context, prompt string, image *Image) (string, error)

	// Speak requests audio playback of text. Best effort: failures no-op.
	Speak(ctx context.Context, text string) error

	// GenerateText produces free text (BOM tables, contract drafts)
	GenerateText(ctx context.Context, prompt string, images []Image) (string, error)

	// GenerateImage produces rendered media from reference images
	GenerateImage(ctx context.Context, images []Image, prompt string) (*Image, error)

	// SearchGrounded answers with source citations
	SearchGrounded(ctx context.Context, prompt, location string) (*GroundedResult, error)

	// EstimateCosts returns a structured material/labor split for a project
	EstimateCosts(ctx context.Context, p *project.Project, marketContext string) (*CostEstimate, error)
}
