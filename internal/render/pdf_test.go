package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_WritesPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	p := NewPDF(path)

	got, err := p.Render("Step 1: open index.html\nStep 2: POST /login")
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRender_OverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	p := NewPDF(path)

	_, err := p.Render(strings.Repeat("long workflow line\n", 400))
	require.NoError(t, err)
	first, err := os.Stat(path)
	require.NoError(t, err)

	_, err = p.Render("short")
	require.NoError(t, err)
	second, err := os.Stat(path)
	require.NoError(t, err)

	assert.Less(t, second.Size(), first.Size())
}

func TestWrite_PaginatesLongText(t *testing.T) {
	var buf bytes.Buffer
	p := &PDF{}
	require.NoError(t, p.Write(&buf, strings.Repeat("line\n", 200)))
	assert.Greater(t, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")), 1)
}

func TestWrite_NonLatinText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PDF{}).Write(&buf, "Café — “quotes” and 🏏"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestNewPDF_DefaultPath(t *testing.T) {
	p := NewPDF("")
	assert.Equal(t, DefaultPath, p.Path)
	assert.Equal(t, DefaultTitle, p.Title)
}

func TestRender_BadPath(t *testing.T) {
	p := NewPDF(filepath.Join(t.TempDir(), "missing", "doc.pdf"))
	_, err := p.Render("text")
	require.Error(t, err)
}
