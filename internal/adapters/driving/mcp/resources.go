package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tingbok/tingbok/internal/core/domain"
)

const uriScheme = "tingbok://"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "vocabulary",
		Name:        "vocabulary",
		Description: "The package vocabulary of root categories",
		MIMEType:    "application/json",
	}, s.handleVocabularyResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "vocabulary/{+conceptId}",
		Name:        "vocabulary-concept",
		Description: "One concept of the package vocabulary",
		MIMEType:    "application/json",
	}, s.handleConceptResource)
}

// handleVocabularyResource returns every vocabulary concept.
func (s *Server) handleVocabularyResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Vocabulary == nil {
		return jsonResult(req.Params.URI, map[string]any{})
	}

	concepts, err := s.ports.Vocabulary.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vocabulary: %w", err)
	}
	return jsonResult(req.Params.URI, concepts)
}

// handleConceptResource returns one vocabulary concept.
func (s *Server) handleConceptResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Vocabulary == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractConceptID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	concept, err := s.ports.Vocabulary.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	return jsonResult(req.Params.URI, concept)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractConceptID maps tingbok://vocabulary/food/vegetables to food/vegetables.
func extractConceptID(uri string) string {
	id, ok := strings.CutPrefix(uri, uriScheme+"vocabulary/")
	if !ok {
		return ""
	}
	return id
}
