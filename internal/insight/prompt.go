package insight

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Veraticus/finsight/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PromptBuilder renders the prompts sent to external providers.
type PromptBuilder struct {
	templates map[string]*template.Template
}

// NewPromptBuilder loads the embedded prompt templates.
func NewPromptBuilder() (*PromptBuilder, error) {
	pb := &PromptBuilder{
		templates: make(map[string]*template.Template),
	}

	funcMap := template.FuncMap{
		"euros": euros,
		"join":  strings.Join,
		"pct":   func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	}

	for _, name := range []string{"insight_prompt", "json_schema"} {
		filename := fmt.Sprintf("templates/%s.tmpl", name)
		tmpl, err := template.New(name + ".tmpl").Funcs(funcMap).ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pb.templates[name] = tmpl
	}

	return pb, nil
}

// PromptData is everything the insight prompt embeds.
type PromptData struct {
	Question      string
	Archetype     MoodArchetype
	EmotionalTags []string
	Totals        Totals
	Mood          int
}

// NewPromptData collects the prompt inputs for a snapshot.
func NewPromptData(s model.Snapshot, question string) PromptData {
	return PromptData{
		Question:      question,
		Archetype:     ArchetypeForMood(s.Mood),
		EmotionalTags: s.EmotionalTags,
		Totals:        ComputeTotals(s),
		Mood:          s.Mood,
	}
}

// BuildInsightPrompt renders the analysis prompt, including the JSON shape
// the provider must answer with.
func (pb *PromptBuilder) BuildInsightPrompt(data PromptData) (string, error) {
	var schemaBuf bytes.Buffer
	if err := pb.templates["json_schema"].ExecuteTemplate(&schemaBuf, "json_schema.tmpl", nil); err != nil {
		return "", fmt.Errorf("failed to execute json_schema template: %w", err)
	}

	fullData := struct {
		JSONSchema string
		PromptData
	}{
		PromptData: data,
		JSONSchema: schemaBuf.String(),
	}

	var buf bytes.Buffer
	if err := pb.templates["insight_prompt"].ExecuteTemplate(&buf, "insight_prompt.tmpl", fullData); err != nil {
		return "", fmt.Errorf("failed to execute insight_prompt template: %w", err)
	}

	return buf.String(), nil
}
