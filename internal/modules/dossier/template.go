package dossier

import (
	"bytes"
	"html/template"

	domainprofile "cockpityara/internal/domain/profile"
	"cockpityara/internal/domain/project"
)

// dossierData feeds the printable client dossier
type dossierData struct {
	Client   *project.Project
	Workshop string
	Operator string
}

var dossierTmpl = template.Must(template.New("dossier").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<title>Dossiê — {{.Client.Name}}</title>
<style>
  body { font-family: Georgia, serif; color: #222; margin: 0; }
  h1 { font-size: 22px; border-bottom: 2px solid #8b5a2b; padding-bottom: 6px; }
  h2 { font-size: 15px; color: #8b5a2b; margin-top: 24px; }
  .meta td { padding: 3px 12px 3px 0; font-size: 13px; }
  .msg { margin: 6px 0; font-size: 12px; }
  .msg .from { font-weight: bold; color: #555; }
  .footer { margin-top: 36px; font-size: 11px; color: #777; }
</style>
</head>
<body>
  <h1>Dossiê do Cliente — {{.Client.Name}}</h1>
  <table class="meta">
    <tr><td>Telefone</td><td>{{.Client.Phone}}</td></tr>
    <tr><td>Status</td><td>{{.Client.Status}}</td></tr>
    <tr><td>Valor estimado</td><td>R$ {{printf "%.2f" .Client.EstimatedValue}}</td></tr>
    <tr><td>Criado em</td><td>{{.Client.CreatedAt.Format "02/01/2006"}}</td></tr>
    <tr><td>Atualizado em</td><td>{{.Client.UpdatedAt.Format "02/01/2006 15:04"}}</td></tr>
  </table>

  <h2>Histórico da conversa</h2>
  {{range .Client.Messages}}{{if eq .Type "text"}}
  <p class="msg"><span class="from">{{if eq .From "user"}}{{$.Operator}}{{else}}Yara{{end}}:</span> {{.Text}}</p>
  {{end}}{{end}}

  <div class="footer">{{.Workshop}} — gerado pelo Cockpit Yara</div>
</body>
</html>`))

// renderHTML builds the printable dossier document.
func renderHTML(client *project.Project, p *domainprofile.CarpenterProfile) (string, error) {
	data := dossierData{
		Client:   client,
		Workshop: p.Workshop,
		Operator: p.DisplayName(),
	}
	if data.Workshop == "" {
		data.Workshop = "Marcenaria"
	}

	var buf bytes.Buffer
	if err := dossierTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
