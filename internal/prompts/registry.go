package prompts

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Prompt and palette names shipped in config/
const (
	TopicExtraction = "topic_extraction"
	PaletteTopics   = "topics"
	PaletteNodes    = "nodes"
)

// Registry holds the embedded prompt templates and colour palettes.
type Registry struct {
	prompts  map[string]*Prompt
	palettes map[string][]string
	mu       sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{
		prompts:  make(map[string]*Prompt),
		palettes: make(map[string][]string),
	}

	if err := r.loadPromptFile(TopicExtraction); err != nil {
		return nil, fmt.Errorf("failed to load %s prompt: %w", TopicExtraction, err)
	}

	if err := r.loadPaletteFile("palettes"); err != nil {
		return nil, fmt.Errorf("failed to load palettes: %w", err)
	}

	return r, nil
}

// MustNewRegistry is NewRegistry for callers that treat a broken embed as a programming error.
func MustNewRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) loadPromptFile(name string) error {
	data, err := readConfig(name)
	if err != nil {
		return err
	}

	var p Prompt
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	if p.Template == "" {
		return fmt.Errorf("%s: empty template", name)
	}

	r.mu.Lock()
	r.prompts[name] = &p
	r.mu.Unlock()

	return nil
}

func (r *Registry) loadPaletteFile(name string) error {
	data, err := readConfig(name)
	if err != nil {
		return err
	}

	var f paletteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, colors := range f.Palettes {
		if len(colors) == 0 {
			return fmt.Errorf("palette %s is empty", k)
		}
		r.palettes[k] = colors
	}

	return nil
}

func readConfig(name string) ([]byte, error) {
	filename := fmt.Sprintf("config/%s.yaml", name)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return data, nil
}

// Prompt returns the named prompt
func (r *Registry) Prompt(name string) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prompts[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
	return p, nil
}

// Palette returns a copy of the named palette
func (r *Registry) Palette(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	colors, ok := r.palettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette: %s", name)
	}
	return append([]string(nil), colors...), nil
}
