package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// --- Render ---

func TestRender_PlaceholderAndHeading(t *testing.T) {
	def := PromptDef{{Name: "greeting", Text: "Hello {name}.\n"}}
	got := Render(def, map[string]string{"name": "Sachin"})
	assert.Contains(t, got, "# GREETING\n\nHello Sachin.\n")
}

func TestRender_KeepsEmptyAppend(t *testing.T) {
	def := PromptDef{
		{Name: "always", Text: "Always.\n"},
		{Name: "files", Text: "Files:", Append: "corpus"},
		{Name: "after", Text: "After."},
	}
	got := Render(def, map[string]string{"corpus": ""})
	assert.Equal(t, "# ALWAYS\n\nAlways.\n\n# FILES\n\nFiles:\n\n\n# AFTER\n\nAfter.", got)
}

func TestRender_SinglePassSubstitution(t *testing.T) {
	def := PromptDef{{Name: "x", Text: "{a} {b}"}}
	data := map[string]string{"a": "{b}", "b": "B"}

	for i := 0; i < 200; i++ {
		require.Equal(t, "# X\n\n{b} B", Render(def, data), "render %d", i)
	}
}

func TestRender_NoSubstitutionInAppendedValue(t *testing.T) {
	def := PromptDef{{Name: "files", Text: "Data for {who}:", Append: "corpus"}}
	got := Render(def, map[string]string{
		"who":    "frontend",
		"corpus": "const tpl = `{who}`;",
	})
	assert.Contains(t, got, "Data for frontend:")
	assert.Contains(t, got, "const tpl = `{who}`;\n")
}

func TestRender_CustomHeading(t *testing.T) {
	def := PromptDef{{Name: "x", Heading: "## Custom", Text: "body"}}
	assert.True(t, strings.HasPrefix(Render(def, nil), "## Custom\n\nbody"))
}

func TestPromptDef_UnmarshalYAML(t *testing.T) {
	src := `
- role: You are helpful.
- files:
    text: "Files:"
    append: corpus
    heading: "# SOURCE"
`
	var def PromptDef
	require.NoError(t, yaml.Unmarshal([]byte(src), &def))
	require.Len(t, def, 2)
	assert.Equal(t, "role", def[0].Name)
	assert.Equal(t, "You are helpful.", def[0].Text)
	assert.Equal(t, "corpus", def[1].Append)
	assert.Equal(t, "# SOURCE", def[1].Heading)
}

func TestPromptDef_UnmarshalYAMLRejectsMapping(t *testing.T) {
	var def PromptDef
	err := yaml.Unmarshal([]byte("role: not a sequence\n"), &def)
	require.Error(t, err)
}

// --- Set ---

func TestDefault_HasAllPrompts(t *testing.T) {
	s := Default()
	assert.Contains(t, s.CricketSystem, "cricket AI assistant")
	assert.NotEmpty(t, s.FrontendAnalysis)
	assert.NotEmpty(t, s.BackendAnalysis)
	assert.NotEmpty(t, s.Synthesis)
}

func TestBuild_AnalysisEmbedsCorpus(t *testing.T) {
	s := Default()

	front, err := s.Build(FrontendAnalysis, Input{Corpus: "---\nFile: index.html\nContent:\n<h1>hi</h1>\n"})
	require.NoError(t, err)
	assert.Contains(t, front, "frontend code")
	assert.Contains(t, front, "File: index.html")

	back, err := s.Build(BackendAnalysis, Input{Corpus: "---\nFile: app.py\nContent:\nprint(1)\n"})
	require.NoError(t, err)
	assert.Contains(t, back, "route API")
	assert.Contains(t, back, "File: app.py")
}

func TestBuild_EmptyCorpusStillProducesPrompt(t *testing.T) {
	got, err := Default().Build(BackendAnalysis, Input{})
	require.NoError(t, err)
	assert.Contains(t, got, noFiles)
}

func TestBuild_SynthesisContainsBothOutputs(t *testing.T) {
	got, err := Default().Build(Synthesis, Input{Frontend: "FRONT-DOC-42", Backend: "BACK-DOC-17"})
	require.NoError(t, err)
	assert.Contains(t, got, "FRONT-DOC-42")
	assert.Contains(t, got, "BACK-DOC-17")
	assert.Less(t, strings.Index(got, "FRONT-DOC-42"), strings.Index(got, "BACK-DOC-17"))
}

func TestBuild_SynthesisAcceptsEmptyOutputs(t *testing.T) {
	got, err := Default().Build(Synthesis, Input{Backend: "only back"})
	require.NoError(t, err)
	assert.Contains(t, got, "# FRONTEND DOCUMENTATION")
	assert.Contains(t, got, "only back")

	got, err = Default().Build(Synthesis, Input{})
	require.NoError(t, err)
	assert.Contains(t, got, "# BACKEND DOCUMENTATION")
}

func TestBuild_UnknownKind(t *testing.T) {
	_, err := Default().Build(Kind("summary"), Input{})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cricket_system: You only talk about Test cricket.
synthesis:
  - task: "Merge:"
  - front:
      append: frontend
  - back:
      append: backend
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "You only talk about Test cricket.", s.CricketSystem)
	assert.Len(t, s.Synthesis, 3)
	assert.Equal(t, Default().FrontendAnalysis, s.FrontendAnalysis)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
