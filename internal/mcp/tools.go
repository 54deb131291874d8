package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/blackwell-systems/laborwatch/internal/feed"
	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/store"
)

// InsightsResult holds a list of insights.
type InsightsResult struct {
	Insights         []insight.Insight `json:"insights"`
	Count            int               `json:"count"`
	GeneratedEnabled bool              `json:"generated_enabled,omitempty"`
	GeneratedError   string            `json:"generated_error,omitempty"`
}

// RulesResult holds the active rule catalog.
type RulesResult struct {
	Version string         `json:"version"`
	Rules   []insight.Rule `json:"rules"`
}

var (
	noArgsSchema       = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	listInsightsSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"company":{"type":"string"},` +
		`"function":{"type":"string"},` +
		`"region":{"type":"string"},` +
		`"initiative":{"type":"string"},` +
		`"category":{"type":"string","description":"Category code (e.g. WAGE_PRESSURE) or label"},` +
		`"include_generated":{"type":"boolean","description":"Merge freshly generated insights for the region"}` +
		`},"additionalProperties":false}`)
	generateSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"company":{"type":"string"},` +
		`"region":{"type":"string"},` +
		`"function":{"type":"string"},` +
		`"persist":{"type":"boolean","description":"Store the generated insights"}` +
		`},"required":["region"],"additionalProperties":false}`)
)

// addTools registers all MCP tool handlers on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "list_insights",
		Description: "Stored labor-market insights, newest first, optionally merged with freshly generated ones.",
		InputSchema: listInsightsSchema,
		Handler:     s.handleListInsights,
	})
	s.registerTool(toolDef{
		Name:        "generate_insights",
		Description: "Evaluate the rule catalog against current metrics for a region.",
		InputSchema: generateSchema,
		Handler:     s.handleGenerateInsights,
	})
	s.registerTool(toolDef{
		Name:        "list_rules",
		Description: "The active insight rule catalog.",
		InputSchema: noArgsSchema,
		Handler:     s.handleListRules,
	})
	s.registerTool(toolDef{
		Name:        "get_stats",
		Description: "Totals, per-category and per-region counts, and average confidence of stored insights.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetStats,
	})
}

func (s *Server) handleListInsights(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Company          string `json:"company"`
		Function         string `json:"function"`
		Region           string `json:"region"`
		Initiative       string `json:"initiative"`
		Category         string `json:"category"`
		IncludeGenerated bool   `json:"include_generated"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, errors.New("invalid arguments: " + err.Error())
	}

	q := feed.Query{
		Company:          params.Company,
		Function:         params.Function,
		Region:           params.Region,
		Initiative:       params.Initiative,
		IncludeGenerated: params.IncludeGenerated,
	}
	if params.Category != "" {
		cat, err := insight.ParseCategory(params.Category)
		if err != nil {
			return nil, err
		}
		q.Category = cat
	}

	res, err := s.deps.Feed.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return InsightsResult{
		Insights:         res.Insights,
		Count:            len(res.Insights),
		GeneratedEnabled: res.GeneratedEnabled,
		GeneratedError:   res.GeneratedError,
	}, nil
}

func (s *Server) handleGenerateInsights(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Company  string `json:"company"`
		Region   string `json:"region"`
		Function string `json:"function"`
		Persist  bool   `json:"persist"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, errors.New("invalid arguments: " + err.Error())
	}
	if strings.TrimSpace(params.Region) == "" {
		return nil, errors.New("region is required")
	}

	scope := insight.Scope{Company: params.Company, Region: params.Region, Function: params.Function}
	if scope.Company == "" {
		scope.Company = s.deps.DefaultCompany
	}
	if scope.Function == "" {
		scope.Function = feed.DefaultFunction
	}

	insights, err := s.deps.Generator.Generate(ctx, scope)
	if err != nil {
		return nil, err
	}
	if params.Persist && len(insights) > 0 {
		if err := s.deps.Store.InsertInsights(ctx, insights); err != nil {
			return nil, err
		}
	}
	return InsightsResult{Insights: insights, Count: len(insights)}, nil
}

func (s *Server) handleListRules(_ context.Context, _ json.RawMessage) (any, error) {
	cat := s.deps.Generator.Catalog()
	return RulesResult{Version: cat.Version(), Rules: cat.Rules()}, nil
}

func (s *Server) handleGetStats(ctx context.Context, _ json.RawMessage) (any, error) {
	var st *store.Stats
	st, err := s.deps.Store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return st, nil
}
