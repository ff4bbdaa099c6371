// Package prompts holds the cricket assistant's system instruction and the
// three stage templates of the documentation pipeline.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Kind names one stage template.
type Kind string

const (
	FrontendAnalysis Kind = "frontend_analysis"
	BackendAnalysis  Kind = "backend_analysis"
	Synthesis        Kind = "synthesis"
)

// noFiles stands in for an empty corpus so the stage call still happens.
const noFiles = "No matching files were found in the project."

var ErrUnknownKind = errors.New("unknown prompt kind")

// Set is a complete collection of prompts.
type Set struct {
	CricketSystem    string    `yaml:"cricket_system"`
	FrontendAnalysis PromptDef `yaml:"frontend_analysis"`
	BackendAnalysis  PromptDef `yaml:"backend_analysis"`
	Synthesis        PromptDef `yaml:"synthesis"`
}

// Input is the data interpolated into one stage template. Corpus feeds the
// two analysis stages; Frontend and Backend are the prior stage outputs
// consumed by synthesis.
type Input struct {
	Corpus   string
	Frontend string
	Backend  string
}

// Default returns the embedded prompt set.
func Default() *Set {
	s, err := parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts: %v", err))
	}
	return s
}

// Load returns the defaults overlaid with every non-empty entry of the YAML
// file at path. An empty path yields the defaults.
func Load(path string) (*Set, error) {
	set := Default()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	override, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompts %s: %w", path, err)
	}

	if override.CricketSystem != "" {
		set.CricketSystem = override.CricketSystem
	}
	if len(override.FrontendAnalysis) > 0 {
		set.FrontendAnalysis = override.FrontendAnalysis
	}
	if len(override.BackendAnalysis) > 0 {
		set.BackendAnalysis = override.BackendAnalysis
	}
	if len(override.Synthesis) > 0 {
		set.Synthesis = override.Synthesis
	}
	return set, nil
}

func parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Build expands the template of the given kind. It performs no truncation
// and no validation of prior stage outputs: empty outputs are passed on as is.
func (s *Set) Build(kind Kind, in Input) (string, error) {
	switch kind {
	case FrontendAnalysis, BackendAnalysis:
		corpus := in.Corpus
		if corpus == "" {
			corpus = noFiles
		}
		def := s.FrontendAnalysis
		if kind == BackendAnalysis {
			def = s.BackendAnalysis
		}
		return Render(def, map[string]string{"corpus": corpus}), nil
	case Synthesis:
		return Render(s.Synthesis, map[string]string{
			"frontend": in.Frontend,
			"backend":  in.Backend,
		}), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
