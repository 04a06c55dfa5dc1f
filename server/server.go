// Package server exposes a read-only HTTP API for browsing a car folder.
package server

import (
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/binzume/modelbinconv/importer"
	"github.com/binzume/modelbinconv/inspect"
	"github.com/binzume/modelbinconv/logger"
	"github.com/binzume/modelbinconv/swatchbin"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/pkg/errors"
)

const MIMEDDS = "image/vnd-ms.dds"

var bundleExts = map[string]string{
	".modelbin":    "model",
	".materialbin": "material",
	".swatchbin":   "texture",
}

type FileEntry struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
	Size int64  `json:"size"`
}

type ResolveResult struct {
	Ref   string `json:"ref"`
	Path  string `json:"path,omitempty"`
	Found bool   `json:"found"`
}

type Server struct {
	root string
	imp  *importer.Importer
	log  logger.Logger
}

// NewServer serves files below root. References are resolved through imp,
// whose caches are shared with every request.
func NewServer(root string, imp *importer.Importer, log logger.Logger) *Server {
	return &Server{root: root, imp: imp, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/api/files", s.handleFiles)
	e.GET("/api/inspect", s.handleInspect)
	e.GET("/api/texture", s.handleTexture)
	e.GET("/api/resolve", s.handleResolve)
	e.GET("/api/stats", s.handleStats)
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}

func writeError(c *echo.Context, status int, msg string) error {
	return writeJSON(c, status, map[string]any{"error": msg})
}

// localPath maps a slash separated path relative to the root to a file
// path, refusing anything outside the root.
func (s *Server) localPath(rel string) (string, error) {
	if rel == "" {
		return "", errors.New("path is required")
	}
	p := filepath.Join(s.root, filepath.FromSlash(rel))
	r, err := filepath.Rel(s.root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("path %q is outside the car folder", rel)
	}
	return p, nil
}

func (s *Server) handleFiles(c *echo.Context) error {
	files := []FileEntry{}
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		kind, ok := bundleExts[strings.ToLower(filepath.Ext(p))]
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(s.root, p)
		files = append(files, FileEntry{Path: filepath.ToSlash(rel), Kind: kind, Size: info.Size()})
		return nil
	})
	if err != nil {
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return writeJSON(c, http.StatusOK, files)
}

func (s *Server) handleInspect(c *echo.Context) error {
	p, err := s.localPath(c.QueryParam("path"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, err.Error())
	}
	report, err := inspect.File(p)
	if os.IsNotExist(err) {
		return writeError(c, http.StatusNotFound, "file not found")
	} else if err != nil && report == nil {
		return writeError(c, http.StatusInternalServerError, err.Error())
	} else if err != nil {
		return writeJSON(c, http.StatusUnprocessableEntity, map[string]any{"error": err.Error(), "report": report})
	}
	report.Path = c.QueryParam("path")
	return writeJSON(c, http.StatusOK, report)
}

// handleTexture returns a texture as DDS. "ref" takes a Game:\ reference,
// "path" a file below the root.
func (s *Server) handleTexture(c *echo.Context) error {
	var tex *swatchbin.Texture
	var err error
	if ref := c.QueryParam("ref"); ref != "" {
		tex, err = s.imp.Textures().Get(ref)
		if errors.Cause(err) == swatchbin.ErrUnresolved {
			return writeError(c, http.StatusNotFound, err.Error())
		}
	} else {
		var p string
		if p, err = s.localPath(c.QueryParam("path")); err != nil {
			return writeError(c, http.StatusBadRequest, err.Error())
		}
		tex, err = swatchbin.Load(p)
		if os.IsNotExist(errors.Cause(err)) {
			return writeError(c, http.StatusNotFound, "file not found")
		}
	}
	if err != nil {
		return writeError(c, http.StatusUnprocessableEntity, err.Error())
	}
	if tex.DDS == nil {
		return c.Blob(http.StatusOK, http.DetectContentType(tex.Raw), tex.Raw)
	}
	return c.Blob(http.StatusOK, MIMEDDS, tex.DDS)
}

func (s *Server) handleResolve(c *echo.Context) error {
	ref := c.QueryParam("path")
	if ref == "" {
		return writeError(c, http.StatusBadRequest, "path is required")
	}
	p, ok := s.imp.Resolver().Resolve(ref)
	res := ResolveResult{Ref: ref, Found: ok}
	if ok {
		if rel, err := filepath.Rel(s.root, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = filepath.ToSlash(rel)
		}
		res.Path = p
	}
	return writeJSON(c, http.StatusOK, res)
}

func (s *Server) handleStats(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, s.imp.Stats())
}
