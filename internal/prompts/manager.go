package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// Template names
const (
	FirstQuestion = "first_question"
	NextQuestion  = "next_question"
	Rephrase      = "rephrase"
)

// Variant names
const (
	VariantSystem = "system"
	VariantUser   = "user"
)

// PromptProvider renders prompts by template name and variant
type PromptProvider interface {
	BuildPrompt(mode, variant string, data any) (string, error)
	GetTemplates() []string
}

type PromptManager struct {
	prompts map[string]map[string]*template.Template // mode -> variant -> compiled prompt
}

// loaded prompt template
type PromptTemplate struct {
	BasePrompt string            `yaml:"base_prompt"`
	Variants   map[string]string `yaml:"variants"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		prompts: make(map[string]map[string]*template.Template),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// BuildPrompt renders the variant of a template with data. Missing keys are errors.
func (pm *PromptManager) BuildPrompt(mode, variant string, data any) (string, error) {
	modePrompts, exists := pm.prompts[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}

	tmpl, exists := modePrompts[variant]
	if !exists {
		return "", fmt.Errorf("variant '%s' not found for mode '%s'", variant, mode)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s/%s: %w", mode, variant, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// GetTemplates returns the loaded template names, sorted
func (pm *PromptManager) GetTemplates() []string {
	names := make([]string, 0, len(pm.prompts))
	for name := range pm.prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.prompts[name] = make(map[string]*template.Template)

		for variant, body := range promptTemplate.Variants {
			text := body
			// the base prompt only frames the system instruction
			if variant == VariantSystem && promptTemplate.BasePrompt != "" {
				text = promptTemplate.BasePrompt + "\n" + body
			}

			tmpl, err := template.New(name + "/" + variant).Option("missingkey=error").Parse(text)
			if err != nil {
				return fmt.Errorf("failed to compile %s/%s: %w", name, variant, err)
			}
			pm.prompts[name][variant] = tmpl
		}
	}

	return nil
}
