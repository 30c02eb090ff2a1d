package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/middleware"
	"github.com/symptom-triage-engine/internal/service"
)

// CreateSessionRequest starts a selection session.
type CreateSessionRequest struct {
	Locale string `json:"locale"`
}

// UpdateTextRequest replaces the session description.
type UpdateTextRequest struct {
	Text   string  `json:"text"`
	Locale *string `json:"locale"`
}

// ToggleRequest flips one symptom in the session checklist.
type ToggleRequest struct {
	Key string `json:"key" binding:"required"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req CreateSessionRequest
	// An empty body is a session with the default locale.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
			return
		}
	}

	session := s.sessions.Create(req.Locale)
	c.JSON(http.StatusCreated, session.Snapshot())
}

func (s *Server) handleGetSession(c *gin.Context) {
	session, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.sessions.Delete(c.Param("id")) {
		abortSessionNotFound(c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpdateSessionText(c *gin.Context) {
	session, ok := s.lookupSession(c)
	if !ok {
		return
	}
	var req UpdateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
		return
	}

	if req.Locale != nil {
		session.SetLocale(*req.Locale)
	}
	c.JSON(http.StatusOK, session.UpdateText(req.Text))
}

func (s *Server) handleToggleSymptom(c *gin.Context) {
	session, ok := s.lookupSession(c)
	if !ok {
		return
	}
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
		return
	}
	key, err := domain.ParseSymptomKey(req.Key)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrValidation, "Invalid symptom", err.Error())
		return
	}

	snapshot, err := session.Toggle(key)
	if err != nil {
		s.abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleAnalyzeSession(c *gin.Context) {
	session, ok := s.lookupSession(c)
	if !ok {
		return
	}

	result, err := session.Analyze(c.Request.Context())
	if errors.Is(err, service.ErrNothingToAnalyze) {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrValidation, err.Error(), "")
		return
	}
	if err != nil {
		s.abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) lookupSession(c *gin.Context) (*service.SelectionSession, bool) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		abortSessionNotFound(c)
		return nil, false
	}
	return session, true
}

func abortSessionNotFound(c *gin.Context) {
	middleware.AbortWithError(c, http.StatusNotFound, domain.ErrSessionNotFound, "Session not found", c.Param("id"))
}
