package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var actionTemplate = template.Must(template.New("action").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1>{{.Title}}</h1>
  <p>Hello{{if .Name}}, {{.Name}}{{end}}!</p>
  <p>{{.Message}}</p>
  {{if .ActionURL}}
  <p style="text-align: center;">
    <a href="{{.ActionURL}}" style="display: inline-block; background-color: #4CAF50; color: white; text-decoration: none; padding: 10px 20px; border-radius: 5px;">{{.ActionLabel}}</a>
  </p>
  {{end}}
  <p style="font-size: 12px; color: #777;">This is an automated message, please do not reply.</p>
</body>
</html>`))

// ActionEmail holds the fields rendered into the shared action template.
type ActionEmail struct {
	Title       string
	Name        string
	Message     string
	ActionURL   string
	ActionLabel string
}

// RenderAction renders the shared HTML template used for reset, confirmation
// and notification mail.
func RenderAction(data ActionEmail) (string, error) {
	if data.ActionLabel == "" {
		data.ActionLabel = "Open"
	}

	var body bytes.Buffer
	if err := actionTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}
