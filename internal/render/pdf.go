// Package render exports the synthesized documentation as a PDF.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
)

const (
	DefaultTitle = "Project Workflow Documentation"
	DefaultPath  = "project_workflow_documentation.pdf"

	pageMargin = 15.0 // mm, bottom margin that triggers a page break
	lineHeight = 10.0
	fontSize   = 12.0
)

// PDF writes single-column documents to a fixed path. Each Render
// overwrites the previous file.
type PDF struct {
	Path  string
	Title string
}

func NewPDF(path string) *PDF {
	if path == "" {
		path = DefaultPath
	}
	return &PDF{Path: path, Title: DefaultTitle}
}

// Render lays out text under the title and writes it to p.Path.
func (p *PDF) Render(text string) (string, error) {
	f, err := os.Create(p.Path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", p.Path, err)
	}
	if err := p.Write(f, text); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", p.Path, err)
	}
	return p.Path, nil
}

// Write lays out text and streams the PDF to w.
func (p *PDF) Write(w io.Writer, text string) error {
	title := p.Title
	if title == "" {
		title = DefaultTitle
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()
	doc.SetFont("Arial", "", fontSize)

	// Core fonts are cp1252; anything outside it degrades instead of
	// corrupting the stream.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.CellFormat(0, lineHeight, tr(title), "", 1, "C", false, 0, "")
	doc.Ln(lineHeight)
	doc.MultiCell(0, lineHeight, tr("Final Response:\n"+text), "", "L", false)

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
