package prompts

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Section is a named part of a rendered prompt. Name becomes a markdown
// heading ("frontend_files" -> "# FRONTEND FILES") unless Heading is set.
// Text may contain {key} placeholders. Append names a data key whose value
// is written verbatim after Text; an empty value leaves an empty body.
type Section struct {
	Name    string
	Text    string
	Append  string
	Heading string
}

type sectionDetail struct {
	Text    string `yaml:"text"`
	Append  string `yaml:"append"`
	Heading string `yaml:"heading"`
}

// PromptDef is an ordered list of sections. In YAML it is a sequence of
// single-key mappings whose value is either the text or a detail mapping.
type PromptDef []Section

func (pd *PromptDef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("prompt definition must be a YAML sequence, got %v", value.Kind)
	}
	sections := make(PromptDef, 0, len(value.Content))
	for i, item := range value.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) < 2 {
			return fmt.Errorf("section %d: expected a single-key mapping", i)
		}
		keyNode, valNode := item.Content[0], item.Content[1]
		sec := Section{Name: keyNode.Value}

		switch valNode.Kind {
		case yaml.ScalarNode:
			sec.Text = valNode.Value
		case yaml.MappingNode:
			var detail sectionDetail
			if err := valNode.Decode(&detail); err != nil {
				return fmt.Errorf("section %q: %w", sec.Name, err)
			}
			sec.Text = detail.Text
			sec.Append = detail.Append
			sec.Heading = detail.Heading
		default:
			return fmt.Errorf("section %q: unexpected YAML node kind %v", sec.Name, valNode.Kind)
		}
		sections = append(sections, sec)
	}
	*pd = sections
	return nil
}

func heading(sec Section) string {
	if sec.Heading != "" {
		return sec.Heading
	}
	return "# " + strings.ToUpper(strings.ReplaceAll(sec.Name, "_", " "))
}

// placeholders substitutes every {key} in a single pass, so a value that
// itself contains a placeholder is never expanded again.
func placeholders(data map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...)
}

// Render expands def with data. Placeholders are substituted in section
// text only, so braces inside appended file contents are left alone.
func Render(def PromptDef, data map[string]string) string {
	r := placeholders(data)

	var buf strings.Builder
	for i, sec := range def {
		if i > 0 {
			buf.WriteString("\n")
		}

		buf.WriteString(heading(sec))
		buf.WriteString("\n\n")

		if sec.Text != "" {
			buf.WriteString(r.Replace(sec.Text))
		}

		if sec.Append != "" {
			value := data[sec.Append]
			buf.WriteString("\n")
			buf.WriteString(value)
			if !strings.HasSuffix(value, "\n") {
				buf.WriteByte('\n')
			}
		}
	}
	return buf.String()
}
