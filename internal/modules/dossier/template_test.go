package dossier

import (
	"strings"
	"testing"
	"time"

	domainprofile "cockpityara/internal/domain/profile"
	"cockpityara/internal/domain/project"
)

func TestRenderHTML(t *testing.T) {
	client := &project.Project{
		ID:             "local-1",
		Name:           "Ana <script>",
		Phone:          "11 99999-0000",
		Status:         project.StatusOrcamento,
		EstimatedValue: 3500.5,
		Messages: project.MessageList{
			project.NewMessage(project.FromUser, project.MessageText, "Quero um guarda-roupa", ""),
			project.NewMessage(project.FromAssistant, project.MessageText, "Claro! Qual a medida da parede?", ""),
			project.NewMessage(project.FromUser, project.MessageImage, "rascunho", "base64data"),
		},
		CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC),
	}
	p := &domainprofile.CarpenterProfile{Name: "Seu Arlindo", Workshop: "Marcenaria Bom Corte"}

	html, err := renderHTML(client, p)
	if err != nil {
		t.Fatalf("renderHTML returned error: %v", err)
	}

	for _, want := range []string{
		"11 99999-0000",
		"Orçamento",
		"R$ 3500.50",
		"Quero um guarda-roupa",
		"Yara:",
		"Seu Arlindo:",
		"Marcenaria Bom Corte",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered dossier missing %q", want)
		}
	}

	if strings.Contains(html, "<script>") {
		t.Fatal("client name must be escaped")
	}
	if strings.Contains(html, "base64data") {
		t.Fatal("image payloads must not be embedded in the transcript")
	}
}

func TestRenderHTMLFallsBackToGenericWorkshop(t *testing.T) {
	client := &project.Project{Name: "Ana", Status: project.StatusLead}
	p := &domainprofile.CarpenterProfile{}

	html, err := renderHTML(client, p)
	if err != nil {
		t.Fatalf("renderHTML returned error: %v", err)
	}
	if !strings.Contains(html, "Marcenaria —") {
		t.Fatal("expected generic workshop name in footer")
	}
}
