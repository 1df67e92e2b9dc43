package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/pipeline"
)

const visitorKey = "visitor"

func (s *Server) listLanguages(c *gin.Context) {
	ok(c, http.StatusOK, medtravel.Languages)
}

// sessionLanguage returns the visitor's stored preference, falling back to
// the Accept-Language header and then the base language.
func (s *Server) sessionLanguage(c *gin.Context) medtravel.Language {
	session := sessions.Default(c)
	if code, _ := session.Get(pipeline.PreferenceKey).(string); code != "" {
		return medtravel.LookupLanguage(code)
	}
	if id, _ := session.Get(visitorKey).(string); id != "" && s.prefs != nil {
		code, err := s.prefs(id).Load(pipeline.PreferenceKey)
		if err != nil {
			s.logger.Warn("Failed to load language preference", zap.String("visitor", id), zap.Error(err))
		} else if code != "" {
			return medtravel.LookupLanguage(code)
		}
	}
	return medtravel.MatchAcceptLanguage(c.GetHeader("Accept-Language"))
}

func (s *Server) getLanguage(c *gin.Context) {
	ok(c, http.StatusOK, s.sessionLanguage(c))
}

type languageRequest struct {
	Code string `json:"code"`
}

// setLanguage stores the visitor's choice. Unknown codes resolve to the base
// language rather than failing.
func (s *Server) setLanguage(c *gin.Context) {
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	lang := medtravel.LookupLanguage(req.Code)
	session := sessions.Default(c)
	session.Set(pipeline.PreferenceKey, lang.Code)

	if s.prefs != nil {
		id, _ := session.Get(visitorKey).(string)
		if id == "" {
			id = uuid.NewString()
			session.Set(visitorKey, id)
		}
		// The cookie still carries the choice if the shared store is down.
		if err := s.prefs(id).Save(pipeline.PreferenceKey, lang.Code); err != nil {
			s.logger.Warn("Failed to store language preference", zap.String("visitor", id), zap.Error(err))
		}
	}

	if err := session.Save(); err != nil {
		s.logger.Error("Failed to save session", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to save language preference")
		return
	}
	ok(c, http.StatusOK, lang)
}
