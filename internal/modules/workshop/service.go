package workshop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cockpityara/internal/assistant"
	"cockpityara/internal/domain/project"
	"cockpityara/internal/repository"
)

// chatCost is the credit price of one assistant round-trip
const chatCost = 1

// Service runs the assistant-backed workshop tools: chat, BOM generation,
// contract drafting, cost estimation and grounded search. Each tool is one
// gateway round-trip; results are persisted back through the orchestrator.
type Service struct {
	sync    Orchestrator
	gateway assistant.Gateway
	credits CreditLedger
	loggerf func(format string, args ...interface{})
}

func NewService(sync Orchestrator, gateway assistant.Gateway, credits CreditLedger, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{sync: sync, gateway: gateway, credits: credits, loggerf: loggerf}
}

// ChatResult is one completed chat round-trip
type ChatResult struct {
	Client *project.Project `json:"client"`
	Reply  string           `json:"reply"`
}

// Chat runs one user turn through the assistant and appends both sides of
// the exchange to the client record. The dispatch is tagged with the client
// id; if the operator has switched clients by the time the reply arrives,
// the reply is discarded and nothing is appended.
func (s *Service) Chat(ctx context.Context, clientID, text string, image *assistant.Image) (*ChatResult, error) {
	if _, err := s.sync.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	if _, err := s.credits.SpendCredits(ctx, chatCost, "chat"); err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, ErrNoCredits
		}
		return nil, err
	}

	reply, err := s.gateway.AnalyzeDraft(ctx, text, image)
	if err != nil {
		// AnalyzeDraft contracts to never fail, but guard the refund anyway
		s.refund(ctx, chatCost, "chat failed")
		return nil, ErrUnavailable
	}

	if !s.sync.StillActive(clientID) {
		s.loggerf("level=info msg=stale assistant reply discarded client_id=%s", clientID)
		s.refund(ctx, chatCost, "stale reply")
		return nil, ErrStaleReply
	}

	userType := project.MessageText
	userSrc := ""
	if image != nil {
		userType = project.MessageImage
		userSrc = image.Data
	}

	rec, err := s.sync.AppendExchange(ctx, clientID,
		project.NewMessage(project.FromUser, userType, text, userSrc),
		project.NewMessage(project.FromAssistant, project.MessageText, reply, ""),
	)
	if err != nil {
		return nil, err
	}

	// Best-effort voice reply; failures are invisible to the operator
	_ = s.gateway.Speak(ctx, reply)

	return &ChatResult{Client: rec, Reply: reply}, nil
}

// GenerateBOM produces a bill of materials from the chat transcript and
// appends it to the record as an assistant message.
func (s *Service) GenerateBOM(ctx context.Context, clientID string) (*ChatResult, error) {
	rec, err := s.sync.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Gere uma lista de materiais (BOM) em tabela markdown para o projeto discutido abaixo. "+
			"Inclua quantidades, dimensões e observações de corte.\n\nCliente: %s\nConversa:\n%s",
		rec.Name, transcript(rec),
	)

	return s.generateAndAppend(ctx, clientID, prompt, "bom")
}

// DraftContract produces a service contract draft and appends it.
func (s *Service) DraftContract(ctx context.Context, clientID, workshopName string) (*ChatResult, error) {
	rec, err := s.sync.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Redija uma minuta de contrato de prestação de serviços de marcenaria entre %q e o cliente %q "+
			"(telefone %s), valor estimado R$ %.2f, com base no projeto discutido:\n%s",
		workshopName, rec.Name, rec.Phone, rec.EstimatedValue, transcript(rec),
	)

	return s.generateAndAppend(ctx, clientID, prompt, "contract")
}

// EstimateResult carries the structured estimate and the updated record
type EstimateResult struct {
	Client       *project.Project        `json:"client"`
	Estimate     *assistant.CostEstimate `json:"estimate"`
	MarketSource []assistant.Source      `json:"market_sources,omitempty"`
}

// EstimateCosts fetches optional market context via grounded search, asks
// the assistant for a material/labor split and persists the new estimated
// value through the orchestrator.
func (s *Service) EstimateCosts(ctx context.Context, clientID, location string) (*EstimateResult, error) {
	rec, err := s.sync.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if _, err := s.credits.SpendCredits(ctx, chatCost, "estimate"); err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, ErrNoCredits
		}
		return nil, err
	}

	// Market grounding is optional; estimation proceeds without it
	marketContext := ""
	var sources []assistant.Source
	grounded, err := s.gateway.SearchGrounded(ctx,
		fmt.Sprintf("Preços atuais de madeira, ferragens e mão de obra de marcenaria para: %s", rec.Name), location)
	if err != nil {
		if !errors.Is(err, assistant.ErrNoCredential) {
			s.loggerf("level=warn msg=market search failed, estimating without context err=%v", err)
		}
	} else {
		marketContext = grounded.Text
		sources = grounded.Sources
	}

	est, err := s.gateway.EstimateCosts(ctx, rec, marketContext)
	if err != nil {
		s.refund(ctx, chatCost, "estimate failed")
		if errors.Is(err, assistant.ErrNoCredential) {
			return nil, ErrAssistantOffline
		}
		return nil, ErrUnavailable
	}

	if !s.sync.StillActive(clientID) {
		s.loggerf("level=info msg=stale estimate discarded client_id=%s", clientID)
		s.refund(ctx, chatCost, "stale estimate")
		return nil, ErrStaleReply
	}

	total := est.MaterialCost + est.LaborCost
	updated, err := s.sync.UpdateClient(ctx, clientID, repository.PartialUpdate{EstimatedValue: &total})
	if err != nil {
		return nil, err
	}

	return &EstimateResult{Client: updated, Estimate: est, MarketSource: sources}, nil
}

// Search runs a grounded search without touching any record.
func (s *Service) Search(ctx context.Context, prompt, location string) (*assistant.GroundedResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrUnavailable
	}

	if _, err := s.credits.SpendCredits(ctx, chatCost, "search"); err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, ErrNoCredits
		}
		return nil, err
	}

	res, err := s.gateway.SearchGrounded(ctx, prompt, location)
	if err != nil {
		s.refund(ctx, chatCost, "search failed")
		if errors.Is(err, assistant.ErrNoCredential) {
			return nil, ErrAssistantOffline
		}
		return nil, ErrUnavailable
	}
	return res, nil
}

func (s *Service) generateAndAppend(ctx context.Context, clientID, prompt, tool string) (*ChatResult, error) {
	if _, err := s.credits.SpendCredits(ctx, chatCost, tool); err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, ErrNoCredits
		}
		return nil, err
	}

	text, err := s.gateway.GenerateText(ctx, prompt, nil)
	if err != nil {
		s.refund(ctx, chatCost, tool+" failed")
		if errors.Is(err, assistant.ErrNoCredential) {
			return nil, ErrAssistantOffline
		}
		return nil, ErrUnavailable
	}

	if !s.sync.StillActive(clientID) {
		s.loggerf("level=info msg=stale %s result discarded client_id=%s", tool, clientID)
		s.refund(ctx, chatCost, "stale "+tool)
		return nil, ErrStaleReply
	}

	rec, err := s.sync.AppendExchange(ctx, clientID,
		project.NewMessage(project.FromAssistant, project.MessageText, text, ""),
	)
	if err != nil {
		return nil, err
	}
	return &ChatResult{Client: rec, Reply: text}, nil
}

func (s *Service) refund(ctx context.Context, amount int64, note string) {
	if _, err := s.credits.RefundCredits(ctx, amount, note); err != nil {
		s.loggerf("level=error msg=credit refund failed note=%q err=%v", note, err)
	}
}

func transcript(rec *project.Project) string {
	var sb strings.Builder
	for _, m := range rec.Messages {
		if m.Type != project.MessageText {
			continue
		}
		sb.WriteString(string(m.From))
		sb.WriteString(": ")
		sb.WriteString(m.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
