package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/nlp"
	"github.com/symptom-triage-engine/internal/service"
)

const maxHistoryLimit = 100

// ResolveSymptomsParams defines parameters for resolve_symptoms tool
type ResolveSymptomsParams struct {
	Text    string   `json:"text"`
	Locale  string   `json:"locale,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// ResolveSymptomsResult defines the result structure for resolve_symptoms tool
type ResolveSymptomsResult struct {
	Keys      []string `json:"keys"`
	MLEnabled bool     `json:"ml_enabled"`
}

// AnalyzeSymptomsParams defines parameters for analyze_symptoms tool
type AnalyzeSymptomsParams struct {
	SelectedKeys []string `json:"selected_keys,omitempty"`
	Text         string   `json:"text,omitempty"`
	Locale       string   `json:"locale,omitempty"`
	Save         *bool    `json:"save,omitempty"`
}

// AnalyzeSymptomsResult defines the result structure for analyze_symptoms tool
type AnalyzeSymptomsResult struct {
	Result *domain.AnalysisResult `json:"result"`
	Saved  bool                   `json:"saved"`
}

// GetLastResultParams defines parameters for get_last_result tool
type GetLastResultParams struct{}

// LastResult defines the result structure for get_last_result tool
type LastResult struct {
	Found  bool                   `json:"found"`
	Result *domain.AnalysisResult `json:"result,omitempty"`
}

// ListHistoryParams defines parameters for list_history tool
type ListHistoryParams struct {
	Limit int `json:"limit,omitempty"`
}

// ListHistoryResult defines the result structure for list_history tool
type ListHistoryResult struct {
	Count   int                      `json:"count"`
	Results []*domain.AnalysisResult `json:"results"`
}

// GetModelInfoParams defines parameters for get_model_info tool
type GetModelInfoParams struct{}

// handleResolveSymptoms handles the resolve_symptoms tool invocation
func (s *Server) handleResolveSymptoms(ctx context.Context, req *mcp.CallToolRequest, params ResolveSymptomsParams) (*mcp.CallToolResult, ResolveSymptomsResult, error) {
	s.logger.WithField("tool", ToolResolveSymptoms).Info("Tool invoked")

	excluded, err := domain.ParseSymptomKeys(params.Exclude)
	if err != nil {
		return createErrorResult("Invalid excluded symptom", err), ResolveSymptomsResult{Keys: []string{}}, nil
	}

	keys := s.service.ResolveExcluding(params.Text, params.Locale, domain.NewSymptomKeySet(excluded...))
	result := ResolveSymptomsResult{
		Keys:      keys.Strings(),
		MLEnabled: s.service.MLEnabled(),
	}

	text := "No known symptoms found in the description."
	if len(result.Keys) > 0 {
		text = "Resolved symptoms: " + strings.Join(result.Keys, ", ")
	}
	return textResult(text), result, nil
}

// handleAnalyzeSymptoms handles the analyze_symptoms tool invocation
func (s *Server) handleAnalyzeSymptoms(ctx context.Context, req *mcp.CallToolRequest, params AnalyzeSymptomsParams) (*mcp.CallToolResult, AnalyzeSymptomsResult, error) {
	s.logger.WithField("tool", ToolAnalyzeSymptoms).Info("Tool invoked")

	keys, err := domain.ParseSymptomKeys(params.SelectedKeys)
	if err != nil {
		return createErrorResult("Invalid selected symptom", err), AnalyzeSymptomsResult{}, nil
	}
	text := strings.TrimSpace(params.Text)
	if len(keys) == 0 && text == "" {
		return createErrorResult("Missing required parameter", service.ErrNothingToAnalyze), AnalyzeSymptomsResult{}, nil
	}

	keys = s.service.MergeTextKeys(keys, text, params.Locale)
	out := AnalyzeSymptomsResult{Result: s.service.Analyze(keys, text, params.Locale)}
	if params.Save == nil || *params.Save {
		out.Saved = s.service.Save(ctx, out.Result)
	}

	return textResult(summarize(out.Result)), out, nil
}

// handleGetLastResult handles the get_last_result tool invocation
func (s *Server) handleGetLastResult(ctx context.Context, req *mcp.CallToolRequest, params GetLastResultParams) (*mcp.CallToolResult, LastResult, error) {
	s.logger.WithField("tool", ToolGetLastResult).Info("Tool invoked")

	result := s.service.LastResult(ctx)
	if result == nil {
		return textResult("No saved analysis."), LastResult{}, nil
	}
	return textResult(summarize(result)), LastResult{Found: true, Result: result}, nil
}

// handleListHistory handles the list_history tool invocation
func (s *Server) handleListHistory(ctx context.Context, req *mcp.CallToolRequest, params ListHistoryParams) (*mcp.CallToolResult, ListHistoryResult, error) {
	s.logger.WithField("tool", ToolListHistory).Info("Tool invoked")

	if params.Limit < 0 || params.Limit > maxHistoryLimit {
		return createErrorResult("Invalid parameter",
			fmt.Errorf("limit must be between 1 and %d", maxHistoryLimit)), ListHistoryResult{Results: []*domain.AnalysisResult{}}, nil
	}

	results := s.service.History(ctx, params.Limit)
	out := ListHistoryResult{Count: len(results), Results: results}

	var b strings.Builder
	fmt.Fprintf(&b, "%d saved analyses", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s %s: %s", i+1,
			r.CreatedTime().UTC().Format("2006-01-02 15:04"), r.UrgencyLevel, r.PrimaryCondition().Name)
	}
	return textResult(b.String()), out, nil
}

// handleGetModelInfo handles the get_model_info tool invocation
func (s *Server) handleGetModelInfo(ctx context.Context, req *mcp.CallToolRequest, params GetModelInfoParams) (*mcp.CallToolResult, nlp.ModelInfo, error) {
	s.logger.WithField("tool", ToolGetModelInfo).Info("Tool invoked")

	info := s.service.ModelInfo()
	text := fmt.Sprintf("Model %s unavailable, keyword rules only", info.Source)
	if info.Available {
		text = fmt.Sprintf("Model %s loaded: %d labels, %d features", info.Source, len(info.Labels), info.VocabSize)
	}
	return textResult(text), info, nil
}

// summarize renders a result as short plain text.
func summarize(r *domain.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.UrgencyTitle, r.UrgencySub)
	fmt.Fprintf(&b, "Symptoms: %s\n", joinKeys(r.SelectedKeys))
	b.WriteString("Conditions:\n")
	for _, c := range r.Conditions {
		fmt.Fprintf(&b, "- %s (%d%%): %s\n", c.Name, c.ConfidencePct, c.Note)
	}
	b.WriteString("Recommendations:\n")
	for _, rec := range r.Recommendations {
		if rec != "" {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	fmt.Fprintf(&b, "Suggested specialty: %s", r.SuggestedSpecialityKey)
	return b.String()
}

func joinKeys(keys []domain.SymptomKey) string {
	if len(keys) == 0 {
		return "none"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// createErrorResult creates a standardized error result for tool calls
func createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
