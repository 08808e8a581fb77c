package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"cockpityara/internal/domain/project"
)

const defaultModel = "claude-sonnet-4-20250514"

const personaPrompt = "Você é Yara, assistente virtual de uma marcenaria sob medida. " +
	"Responda em português, de forma curta e prática, sobre projetos de móveis, " +
	"materiais, medidas e prazos. Quando receber uma imagem, descreva o que é " +
	"relevante para orçamento e produção."

// failureReply is shown when the assistant call fails mid-session; the chat
// state stays untouched and no retry is attempted.
const failureReply = "Não consegui processar agora. Tente novamente em instantes."

// AnthropicGateway implements Gateway over the Anthropic messages API.
type AnthropicGateway struct {
	client  anthropic.Client
	model   anthropic.Model
	loggerf func(format string, args ...interface{})
}

var _ Gateway = (*AnthropicGateway)(nil)

// NewAnthropicGateway builds the gateway. model may be empty to use the
// default. loggerf may be nil.
func NewAnthropicGateway(apiKey, model string, loggerf func(format string, args ...interface{})) *AnthropicGateway {
	if model == "" {
		model = defaultModel
	}
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &AnthropicGateway{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   anthropic.Model(model),
		loggerf: loggerf,
	}
}

// AnalyzeDraft answers one chat turn. It never returns an error: transient
// failures are logged and converted to a fixed fallback reply.
func (g *AnthropicGateway) AnalyzeDraft(ctx context.Context, prompt string, image *Image) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{}
	if image != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(image.MediaType, image.Data))
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	text, err := g.complete(ctx, personaPrompt, blocks, nil)
	if err != nil {
		g.loggerf("level=warn msg=assistant analyze failed err=%v", err)
		return failureReply, nil
	}
	return text, nil
}

// Speak is best-effort audio playback. Speech synthesis happens in the
// browser; this backend has nothing to do and silently no-ops.
func (g *AnthropicGateway) Speak(ctx context.Context, text string) error {
	return nil
}

// GenerateText produces free text such as BOM tables or contract drafts.
func (g *AnthropicGateway) GenerateText(ctx context.Context, prompt string, images []Image) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{}
	for _, img := range images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(img.MediaType, img.Data))
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	return g.complete(ctx, personaPrompt, blocks, nil)
}

// GenerateImage is not supported by this backend.
func (g *AnthropicGateway) GenerateImage(ctx context.Context, images []Image, prompt string) (*Image, error) {
	return nil, ErrUnsupported
}

// SearchGrounded answers with web-search grounding and returns citations.
func (g *AnthropicGateway) SearchGrounded(ctx context.Context, prompt, location string) (*GroundedResult, error) {
	if location != "" {
		prompt = fmt.Sprintf("%s\n\nRegião do cliente: %s", prompt, location)
	}

	tools := []anthropic.ToolUnionParam{
		{OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{MaxUses: anthropic.Int(3)}},
	}

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: 2048,
		System:    []anthropic.TextBlockParam{{Text: personaPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Tools:     tools,
	})
	if err != nil {
		return nil, fmt.Errorf("grounded search: %w", err)
	}

	result := &GroundedResult{}
	var sb strings.Builder
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(v.Text)
			for _, cit := range v.Citations {
				if cit.URL != "" {
					result.Sources = append(result.Sources, Source{Title: cit.Title, URL: cit.URL})
				}
			}
		}
	}
	result.Text = sb.String()
	return result, nil
}

// EstimateCosts asks for a structured material/labor split via a forced
// tool call.
func (g *AnthropicGateway) EstimateCosts(ctx context.Context, p *project.Project, marketContext string) (*CostEstimate, error) {
	tool := anthropic.ToolParam{
		Name:        "record_estimate",
		Description: anthropic.String("Registra a estimativa de custos do projeto"),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"material_cost": map[string]interface{}{"type": "number", "description": "Custo de materiais em reais"},
				"labor_cost":    map[string]interface{}{"type": "number", "description": "Custo de mão de obra em reais"},
			},
		},
	}

	prompt := fmt.Sprintf(
		"Estime os custos do projeto abaixo e registre com a ferramenta record_estimate.\n\nCliente: %s\nStatus: %s\nConversa:\n%s",
		p.Name, p.Status, chatTranscript(p),
	)
	if marketContext != "" {
		prompt += "\n\nContexto de mercado:\n" + marketContext
	}

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:      g.model,
		MaxTokens:  1024,
		System:     []anthropic.TextBlockParam{{Text: personaPrompt}},
		Messages:   []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Tools:      []anthropic.ToolUnionParam{{OfTool: &tool}},
		ToolChoice: anthropic.ToolChoiceUnionParam{OfTool: &anthropic.ToolChoiceToolParam{Name: "record_estimate"}},
	})
	if err != nil {
		return nil, fmt.Errorf("cost estimate: %w", err)
	}

	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			raw, err := json.Marshal(v.Input)
			if err != nil {
				return nil, fmt.Errorf("cost estimate payload: %w", err)
			}
			var est CostEstimate
			if err := json.Unmarshal(raw, &est); err != nil {
				return nil, fmt.Errorf("cost estimate payload: %w", err)
			}
			return &est, nil
		}
	}
	return nil, fmt.Errorf("cost estimate: model returned no structured output")
}

func (g *AnthropicGateway) complete(ctx context.Context, system string, blocks []anthropic.ContentBlockParamUnion, tools []anthropic.ToolUnionParam) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: 2048,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Tools:     tools,
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(v.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return sb.String(), nil
}

func chatTranscript(p *project.Project) string {
	var sb strings.Builder
	for _, m := range p.Messages {
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
