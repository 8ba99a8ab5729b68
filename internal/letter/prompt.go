package letter

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/Veraticus/creditrag/internal/model"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// promptData is the input to the letter prompt template.
type promptData struct {
	Details      model.AccountDetails
	Category     model.Category
	TemplateID   string
	Template     string
	FormatName   string
	ItemTable    string
	Grounding    string
	Instructions string
	DetailKeys   []string
}

var funcMap = template.FuncMap{
	"label": func(c model.Category) string { return c.Label() },
}

func loadPromptTemplate(name string) (*template.Template, error) {
	filename := fmt.Sprintf("prompts/%s.tmpl", name)
	tmpl, err := template.New(fmt.Sprintf("%s.tmpl", name)).Funcs(funcMap).ParseFS(promptFS, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", filename, err)
	}
	return tmpl, nil
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute letter prompt template: %w", err)
	}
	return buf.String(), nil
}

func formatName(f Format) string {
	if f == FormatHTML {
		return "HTML"
	}
	return "Markdown"
}
