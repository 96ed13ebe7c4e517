package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"strings"
	texttemplate "text/template"

	"eventhub/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// executor is satisfied by both *html/template.Template and *text/template.Template.
type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// templateRenderer renders the embedded ticket emails. Every message is a triple of files:
// <name>_subject.txt, <name>.txt and <name>.html.
type templateRenderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewTemplateRenderer parses all embedded templates once. The set is compiled into the binary,
// so a parse failure is a build defect and panics.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{
		text: texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt")),
		html: htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html")),
	}
}

// Render executes the named template (e.g. "ticket_confirmed") with data and returns subject, html, and text bodies.
func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	if _, err := fs.Stat(templateFS, "templates/"+templateName+".html"); err != nil {
		return "", "", "", fmt.Errorf("unknown email template %q", templateName)
	}
	if subject, err = execute(r.text, templateName+"_subject.txt", data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	if htmlBody, err = execute(r.html, templateName+".html", data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	if textBody, err = execute(r.text, templateName+".txt", data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

func execute(t executor, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
