package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/middleware"
	"github.com/symptom-triage-engine/internal/nlp"
	"github.com/symptom-triage-engine/internal/service"
)

const maxHistoryLimit = 100

// ResolveRequest asks for the symptom keys found in free text.
type ResolveRequest struct {
	Text    string   `json:"text"`
	Locale  string   `json:"locale"`
	Exclude []string `json:"exclude"`
}

// ResolveResponse carries the resolved keys in resolution order.
type ResolveResponse struct {
	Keys      []domain.SymptomKey `json:"keys"`
	MLEnabled bool                `json:"mlEnabled"`
}

// AnalyzeRequest scores a set of selected keys.
type AnalyzeRequest struct {
	SelectedKeys []string `json:"selectedKeys"`
	Text         string   `json:"text"`
	Locale       string   `json:"locale"`
	Save         *bool    `json:"save"`
}

// HistoryResponse lists saved results newest first.
type HistoryResponse struct {
	Count   int                      `json:"count"`
	Results []*domain.AnalysisResult `json:"results"`
}

// HealthResponse reports readiness and model state.
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	MLEnabled bool          `json:"mlEnabled"`
	Model     nlp.ModelInfo `json:"model"`
	Storage   string        `json:"storage"`
	Sessions  int           `json:"sessions"`
	Error     string        `json:"error,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
		MLEnabled: s.app.Service.MLEnabled(),
		Model:     s.app.Service.ModelInfo(),
		Storage:   s.app.Config.Storage.Backend,
		Sessions:  s.sessions.Len(),
	}

	status := http.StatusOK
	if err := s.app.Health(c.Request.Context()); err != nil {
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	} else if !resp.Model.Available {
		// Rules still work without the classifier.
		resp.Status = "degraded"
	}
	c.JSON(status, resp)
}

func (s *Server) handleResolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
		return
	}
	excluded, err := domain.ParseSymptomKeys(req.Exclude)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrValidation, "Invalid excluded symptom", err.Error())
		return
	}

	keys := s.app.Service.ResolveExcluding(req.Text, req.Locale, domain.NewSymptomKeySet(excluded...))
	c.JSON(http.StatusOK, ResolveResponse{
		Keys:      keys.Keys(),
		MLEnabled: s.app.Service.MLEnabled(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
		return
	}
	keys, err := domain.ParseSymptomKeys(req.SelectedKeys)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrValidation, "Invalid selected symptom", err.Error())
		return
	}
	text := strings.TrimSpace(req.Text)
	if len(keys) == 0 && text == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrValidation, service.ErrNothingToAnalyze.Error(), "")
		return
	}

	keys = s.app.Service.MergeTextKeys(keys, text, req.Locale)
	var result *domain.AnalysisResult
	if req.Save == nil || *req.Save {
		result = s.app.Service.AnalyzeAndSave(c.Request.Context(), keys, text, req.Locale)
	} else {
		result = s.app.Service.Analyze(keys, text, req.Locale)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleLastResult(c *gin.Context) {
	result := s.app.Service.LastResult(c.Request.Context())
	if result == nil {
		middleware.AbortWithError(c, http.StatusNotFound, domain.ErrNotFound, "No saved analysis", "")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrValidation,
				"limit must be between 1 and "+strconv.Itoa(maxHistoryLimit), raw)
			return
		}
		limit = n
	}

	results := s.app.Service.History(c.Request.Context(), limit)
	c.JSON(http.StatusOK, HistoryResponse{Count: len(results), Results: results})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if err := s.app.Service.Clear(c.Request.Context()); err != nil {
		s.abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStats(c *gin.Context) {
	resp := gin.H{
		"cache":    s.app.Service.CacheStats(),
		"sessions": s.sessions.Len(),
	}
	counts, supported, err := s.app.UrgencyBreakdown(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Warn("Failed to compute urgency breakdown")
	}
	if supported && err == nil {
		resp["urgency"] = counts
	}
	c.JSON(http.StatusOK, resp)
}

// abortWithServiceError maps service errors onto the error envelope.
func (s *Server) abortWithServiceError(c *gin.Context, err error) {
	var triageErr *domain.TriageError
	if errors.As(err, &triageErr) {
		status := http.StatusInternalServerError
		if triageErr.Code == domain.ErrValidation || triageErr.Code == domain.ErrInvalidInput {
			status = http.StatusBadRequest
		}
		middleware.AbortWithError(c, status, triageErr.Code, triageErr.Message, triageErr.Details)
		return
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		middleware.AbortWithError(c, http.StatusBadRequest, domain.ErrValidation, validationErr.Error(), "")
		return
	}
	s.logger.WithError(err).Error("Unhandled service error")
	middleware.AbortWithError(c, http.StatusInternalServerError, domain.ErrInternalServer, "Internal server error", "")
}
