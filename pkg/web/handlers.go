package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gokaycavdar/tickzero-landing/pkg/analytics"
	"github.com/gokaycavdar/tickzero-landing/pkg/consent"
	"github.com/gokaycavdar/tickzero-landing/pkg/engine"
	"github.com/gokaycavdar/tickzero-landing/pkg/i18n"
	"github.com/gokaycavdar/tickzero-landing/pkg/locale"
	"github.com/gokaycavdar/tickzero-landing/pkg/models"
)

type consentResponse struct {
	Status             models.ConsentStatus `json:"status"`
	State              string               `json:"state"`
	Prompt             bool                 `json:"prompt"`
	CanUseNonEssential bool                 `json:"can_use_non_essential"`
	Language           string               `json:"language"`
	Copy               *i18n.Prompt         `json:"copy,omitempty"`
	DismissAfterMS     *int64               `json:"dismiss_after_ms,omitempty"`
}

type eventRequest struct {
	Category string `json:"category" binding:"required"`
	Action   string `json:"action" binding:"required"`
	Label    string `json:"label"`
	Path     string `json:"path"`
}

// session loads the visitor's banner for an API call.
func (s *Server) session(c *gin.Context) (*engine.Session, *responsePresenter, bool) {
	st, err := s.storeFor(c)
	if err != nil {
		s.logger.Error("visitor store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return nil, nil, false
	}

	p := &responsePresenter{}
	sess := s.engine.Session(st, p)
	sess.Banner.Load()
	return sess, p, true
}

// language picks the copy language: explicit query, stored preference,
// declared language, then the base language.
func (s *Server) language(c *gin.Context, sess *engine.Session) string {
	if q := c.Query("lang"); locale.IsSupported(q) {
		return q
	}
	if pref, ok := sess.Resolver.PreferredLanguage(); ok {
		return pref
	}
	if d := s.engine.Context(s.input(c)).DeclaredLanguage; locale.IsSupported(d) {
		return d
	}
	return sess.Resolver.BaseLanguage()
}

func (s *Server) consentResponse(c *gin.Context, sess *engine.Session, p *responsePresenter) consentResponse {
	state := sess.Banner.State()
	resp := consentResponse{
		Status:             sess.Consent.Status(),
		State:              state.String(),
		Prompt:             state == consent.StatePrompting,
		CanUseNonEssential: sess.Consent.CanUseNonEssential(),
		Language:           s.language(c, sess),
	}
	if resp.Prompt {
		prompt := s.catalog.Prompt(resp.Language)
		resp.Copy = &prompt
	}
	if p.dismissed {
		ms := p.dismissDelay.Milliseconds()
		resp.DismissAfterMS = &ms
	}
	return resp
}

func (s *Server) handleConsentStatus(c *gin.Context) {
	sess, p, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.consentResponse(c, sess, p))
}

func (s *Server) handleConsentAccept(c *gin.Context) {
	sess, p, ok := s.session(c)
	if !ok {
		return
	}
	sess.Banner.OnAcceptClicked()
	c.JSON(http.StatusOK, s.consentResponse(c, sess, p))
}

func (s *Server) handleConsentReject(c *gin.Context) {
	sess, p, ok := s.session(c)
	if !ok {
		return
	}
	sess.Banner.OnRejectClicked()
	c.JSON(http.StatusOK, s.consentResponse(c, sess, p))
}

func (s *Server) handleConsentPolicy(c *gin.Context) {
	sess, _, ok := s.session(c)
	if !ok {
		return
	}
	lang := s.language(c, sess)
	c.JSON(http.StatusOK, gin.H{
		"language": lang,
		"policy":   s.catalog.Policy(lang),
	})
}

func (s *Server) handleEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category and action are required"})
		return
	}

	sess, _, ok := s.session(c)
	if !ok {
		return
	}

	recorded := sess.Tracker.Track(analytics.Event{
		Category: req.Category,
		Action:   req.Action,
		Label:    req.Label,
		Path:     req.Path,
	})
	if !recorded {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"recorded": true})
}

func (s *Server) handleLanguageSwitch(c *gin.Context) {
	sess, _, ok := s.session(c)
	if !ok {
		return
	}

	target, err := sess.Resolver.Select(c.Param("code"))
	if errors.Is(err, locale.ErrUnsupportedLanguage) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported language"})
		return
	}
	c.Redirect(http.StatusFound, target)
}
