package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/prajwal-ck/aidoc/internal/corpus"
	"github.com/prajwal-ck/aidoc/internal/pipeline"
	"github.com/prajwal-ck/aidoc/internal/upload"
)

const docsTitle = "Project Workflow Document Generator"

// DocsRequest is the body of POST /api/v1/docs.
type DocsRequest struct {
	Path string `json:"path"`
}

func docStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidPath), errors.Is(err, upload.ErrUnsafePath):
		return http.StatusBadRequest
	case errors.Is(err, corpus.ErrNotText):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) docsPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "docs.html", page{Title: docsTitle})
}

func (s *Server) docsSubmit(w http.ResponseWriter, r *http.Request) {
	root := r.FormValue("path")
	p := page{Title: docsTitle, Path: root}
	if root == "" {
		s.render(w, http.StatusOK, "docs.html", p)
		return
	}
	s.runDocs(w, r, p, root)
}

func (s *Server) docsUpload(w http.ResponseWriter, r *http.Request) {
	p := page{Title: docsTitle}
	if s.uploadMax > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.uploadMax)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		p.Error = fmt.Sprintf("invalid upload: %v", err)
		s.render(w, http.StatusBadRequest, "docs.html", p)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		p.Error = "no files uploaded"
		s.render(w, http.StatusBadRequest, "docs.html", p)
		return
	}

	dir, err := stageUploads(headers)
	if err != nil {
		s.logger.Error("staging upload failed", "error", err)
		p.Error = err.Error()
		s.render(w, docStatus(err), "docs.html", p)
		return
	}
	s.logger.Info("folder uploaded", "files", len(headers), "dir", dir)

	p.StagedDir = dir
	s.runDocs(w, r, p, dir)
}

func (s *Server) runDocs(w http.ResponseWriter, r *http.Request, p page, root string) {
	res, err := s.docs.Run(r.Context(), root)
	if err != nil {
		p.Error = err.Error()
		s.render(w, docStatus(err), "docs.html", p)
		return
	}
	s.setLastDocument(res.DocumentPath)
	p.Result = res
	s.render(w, http.StatusOK, "docs.html", p)
}

// docsAPI handles POST /api/v1/docs
func (s *Server) docsAPI(w http.ResponseWriter, r *http.Request) {
	var req DocsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	res, err := s.docs.Run(r.Context(), req.Path)
	if err != nil {
		writeError(w, docStatus(err), err)
		return
	}
	s.setLastDocument(res.DocumentPath)
	writeJSON(w, http.StatusOK, res)
}

// docsDownload serves the most recent document as an attachment.
func (s *Server) docsDownload(w http.ResponseWriter, r *http.Request) {
	path := s.lastDocument()
	if path == "" {
		http.Error(w, "no document has been generated yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": filepath.Base(path),
	}))
	http.ServeFile(w, r, path)
}

// stageUploads rebuilds the uploaded folder. The relative path comes from
// the raw Content-Disposition because multipart strips directories from
// FileHeader.Filename.
func stageUploads(headers []*multipart.FileHeader) (string, error) {
	files := make([]upload.File, 0, len(headers))
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		closers = append(closers, f)
		files = append(files, upload.File{Name: uploadName(fh), Content: f})
	}
	return upload.Stage(files)
}

func uploadName(fh *multipart.FileHeader) string {
	_, params, err := mime.ParseMediaType(fh.Header.Get("Content-Disposition"))
	if err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return fh.Filename
}
