package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// ConceptInput is the input schema for the resolve_concept tool.
type ConceptInput struct {
	URI    string `json:"uri" jsonschema:"the concept URI (AGROVOC, DBpedia or Wikidata)"`
	Source string `json:"source,omitempty" jsonschema:"explicit source: agrovoc, dbpedia or wikidata (default: derived from the URI)"`
}

// ConceptOutput is the output schema for the resolve_concept tool.
type ConceptOutput struct {
	Found   bool            `json:"found"`
	Origin  domain.Origin   `json:"origin"`
	Concept *domain.Concept `json:"concept,omitempty"`
}

// LookupInput is the input schema for the lookup_concept tool.
type LookupInput struct {
	Label  string `json:"label" jsonschema:"the label to search for"`
	Lang   string `json:"lang,omitempty" jsonschema:"language of the label (default en)"`
	Source string `json:"source,omitempty" jsonschema:"source to search: agrovoc, dbpedia or wikidata (default agrovoc)"`
}

// LabelsInput is the input schema for the resolve_labels tool.
type LabelsInput struct {
	URIs      []string `json:"uris" jsonschema:"concept URIs to translate"`
	Languages []string `json:"languages,omitempty" jsonschema:"language codes to return (default: all)"`
}

// LabelsOutput is the output schema for the resolve_labels tool.
type LabelsOutput struct {
	Results []domain.LabelsOutcome `json:"results"`
}

// HierarchyInput is the input schema for the resolve_hierarchy tool.
type HierarchyInput struct {
	URI      string `json:"uri,omitempty" jsonschema:"the concept URI to start from"`
	Label    string `json:"label,omitempty" jsonschema:"a label to start from when uri is empty"`
	Lang     string `json:"lang,omitempty" jsonschema:"language of the label (default en)"`
	Source   string `json:"source,omitempty" jsonschema:"source searched for the label (default agrovoc)"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"maximum broader hops (default 15)"`
}

// HierarchyOutput is the output schema for the resolve_hierarchy tool.
type HierarchyOutput struct {
	Breadcrumb string                 `json:"breadcrumb"`
	Found      bool                   `json:"found"`
	Reason     domain.StopReason      `json:"reason"`
	Root       string                 `json:"root,omitempty"`
	Steps      []domain.HierarchyStep `json:"steps"`
	Error      string                 `json:"error,omitempty"`
}

// StatsInput is the (empty) input schema for the cache_stats tool.
type StatsInput struct{}

// errUnavailable is returned by tools whose port is not wired.
var errUnavailable = errors.New("not available in this server")

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_concept",
		Description: "Resolve a SKOS concept URI to its preferred label, alternative labels and broader concepts",
	}, s.handleResolveConcept)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "lookup_concept",
		Description: "Find the SKOS concept whose label best matches the query in one source",
	}, s.handleLookupConcept)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_labels",
		Description: "Translate concept URIs into labels in the requested languages",
	}, s.handleResolveLabels)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_hierarchy",
		Description: "Walk broader relations from a concept, given by URI or label, up to its root category and return the path",
	}, s.handleResolveHierarchy)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Report how many concepts, labels and not-found entries are cached, per source",
	}, s.handleCacheStats)
}

// handleResolveConcept handles the resolve_concept tool invocation.
func (s *Server) handleResolveConcept(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConceptInput,
) (*mcp.CallToolResult, ConceptOutput, error) {
	var res *domain.Resolution
	var err error
	if input.Source != "" {
		key := domain.ConceptKey{Source: domain.Source(input.Source), URI: input.URI}
		if !key.Source.IsValid() {
			return nil, ConceptOutput{}, domain.ErrUnsupportedSource
		}
		res, err = s.ports.Resolver.Resolve(ctx, key, domain.KindConcept)
	} else {
		res, err = s.ports.Resolver.ResolveURI(ctx, input.URI, domain.KindConcept)
	}
	if err != nil {
		return nil, ConceptOutput{}, err
	}
	return nil, ConceptOutput{Found: res.Found, Origin: res.Origin, Concept: res.Concept}, nil
}

// labelSource parses an optional source name, defaulting to AGROVOC.
func labelSource(name string) (domain.Source, error) {
	if name == "" {
		return domain.SourceAgrovoc, nil
	}
	source := domain.Source(name)
	if !source.IsValid() {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, name)
	}
	return source, nil
}

// handleLookupConcept handles the lookup_concept tool invocation.
func (s *Server) handleLookupConcept(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, ConceptOutput, error) {
	source, err := labelSource(input.Source)
	if err != nil {
		return nil, ConceptOutput{}, err
	}
	res, err := s.ports.Resolver.ResolveLabel(ctx, source, input.Label, input.Lang)
	if err != nil {
		return nil, ConceptOutput{}, err
	}
	return nil, ConceptOutput{Found: res.Found, Origin: res.Origin, Concept: res.Concept}, nil
}

// handleResolveLabels handles the resolve_labels tool invocation.
func (s *Server) handleResolveLabels(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LabelsInput,
) (*mcp.CallToolResult, LabelsOutput, error) {
	if len(input.URIs) == 0 {
		return nil, LabelsOutput{}, domain.ErrInvalidInput
	}
	results := s.ports.Resolver.ResolveLabelsBatch(ctx, input.URIs, input.Languages)
	return nil, LabelsOutput{Results: results}, nil
}

// handleResolveHierarchy handles the resolve_hierarchy tool invocation.
func (s *Server) handleResolveHierarchy(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HierarchyInput,
) (*mcp.CallToolResult, HierarchyOutput, error) {
	if s.ports.Hierarchy == nil {
		return nil, HierarchyOutput{}, errUnavailable
	}
	var (
		path *domain.HierarchyPath
		err  error
	)
	if input.URI == "" && input.Label != "" {
		source, serr := labelSource(input.Source)
		if serr != nil {
			return nil, HierarchyOutput{}, serr
		}
		path, err = s.ports.Hierarchy.ResolveHierarchyLabel(ctx, source, input.Label, input.Lang, input.MaxDepth)
	} else {
		path, err = s.ports.Hierarchy.ResolveHierarchy(ctx, input.URI, input.MaxDepth)
	}
	if err != nil {
		return nil, HierarchyOutput{}, err
	}
	return nil, HierarchyOutput{
		Breadcrumb: path.Breadcrumb(),
		Found:      path.Found,
		Reason:     path.Reason,
		Root:       path.Root,
		Steps:      path.Steps,
		Error:      path.Error,
	}, nil
}

// handleCacheStats handles the cache_stats tool invocation.
func (s *Server) handleCacheStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, domain.CacheStats, error) {
	if s.ports.Stats == nil {
		return nil, domain.CacheStats{}, errUnavailable
	}
	stats, err := s.ports.Stats.CacheStats(ctx)
	if err != nil {
		return nil, domain.CacheStats{}, err
	}
	return nil, stats, nil
}
