package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/page"
	"github.com/ZaguanLabs/medtravel/pipeline"
)

// pageFile maps a request path below /pages to a file in the pages dir.
// "/" is index.html and extensionless paths get ".html".
func pageFile(root, reqPath string) string {
	clean := path.Clean("/" + reqPath)
	if clean == "/" {
		clean = "/index.html"
	} else if path.Ext(clean) == "" {
		clean += ".html"
	}
	return filepath.Join(root, filepath.FromSlash(clean[1:]))
}

// renderPage serves a site page translated into the requested language:
// ?lang= first, then the session preference, then Accept-Language.
func (s *Server) renderPage(c *gin.Context) {
	file := pageFile(s.cfg.Site.PagesDir, c.Param("path"))
	doc, err := page.ParseFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fail(c, http.StatusNotFound, "page not found")
			return
		}
		s.failErr(c, err)
		return
	}

	lang := s.sessionLanguage(c)
	if code := strings.TrimSpace(c.Query("lang")); code != "" {
		lang = medtravel.LookupLanguage(code)
	}

	if !lang.IsBase() && s.batch != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), renderTimeout)
		defer cancel()

		scanner := page.NewScanner(page.WithRootSelector(s.cfg.Site.RootSelector))
		res, err := pipeline.Render(ctx, doc, lang.Code, s.batch,
			pipeline.WithScanner(scanner),
			pipeline.WithLogger(s.logger))
		if err != nil {
			s.logger.Warn("Page rendered partially",
				zap.String("page", file),
				zap.String("lang", lang.Code),
				zap.Error(err))
		} else {
			s.logger.Debug("Page rendered",
				zap.String("page", file),
				zap.String("lang", lang.Code),
				zap.Int("nodes", res.Nodes),
				zap.Int("applied", res.Applied),
				zap.Int("cache_hits", res.CacheHits),
				zap.Int("failed", res.Failed))
		}
	} else {
		doc.SetLanguage(lang)
	}

	html, err := doc.HTML()
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.Header("Content-Language", lang.Code)
	c.Header("Vary", "Cookie, Accept-Language")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
