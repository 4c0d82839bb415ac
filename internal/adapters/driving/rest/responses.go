package rest

import (
	"github.com/tingbok/tingbok/internal/core/domain"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ConceptResponse is a concept with its labels.
type ConceptResponse struct {
	URI          string              `json:"uri"`
	PrefLabel    string              `json:"prefLabel"`
	AltLabels    map[string][]string `json:"altLabels"`
	Broader      []domain.BroaderRef `json:"broader"`
	Narrower     []string            `json:"narrower"`
	Source       domain.Source       `json:"source"`
	Labels       domain.Labels       `json:"labels"`
	Description  string              `json:"description,omitempty"`
	WikipediaURL string              `json:"wikipediaUrl,omitempty"`
	Origin       domain.Origin       `json:"origin"`
}

func newConceptResponse(res *domain.Resolution, labels domain.Labels) ConceptResponse {
	c := res.Concept
	out := ConceptResponse{
		URI:          c.URI,
		PrefLabel:    c.PrefLabel,
		AltLabels:    c.AltLabels,
		Broader:      c.Broader,
		Narrower:     c.Narrower,
		Source:       res.Key.Source,
		Labels:       labels,
		Description:  c.Description,
		WikipediaURL: c.WikipediaURL,
		Origin:       res.Origin,
	}
	if out.AltLabels == nil {
		out.AltLabels = map[string][]string{}
	}
	if out.Broader == nil {
		out.Broader = []domain.BroaderRef{}
	}
	if out.Narrower == nil {
		out.Narrower = []string{}
	}
	if out.Labels == nil {
		out.Labels = domain.Labels{}
	}
	return out
}

// LabelsResponse holds translations for one URI.
type LabelsResponse struct {
	URI    string        `json:"uri"`
	Labels domain.Labels `json:"labels"`
	Source domain.Source `json:"source"`
	Origin domain.Origin `json:"origin"`
}

// BatchLabelsRequest asks for labels of several URIs.
type BatchLabelsRequest struct {
	URIs      []string `json:"uris" binding:"required,max=500"`
	Languages []string `json:"languages"`
}

// BatchLabelsResponse maps each found URI to its labels. Results carries
// one outcome per requested URI, in request order.
type BatchLabelsResponse struct {
	Labels  map[string]domain.Labels `json:"labels"`
	Results []domain.LabelsOutcome   `json:"results"`
}

// HierarchyResponse is a resolved hierarchy path.
type HierarchyResponse struct {
	URI    string                 `json:"uri"`
	Label  string                 `json:"label"`
	Found  bool                   `json:"found"`
	Source domain.Source          `json:"source"`
	Paths  []string               `json:"paths"`
	URIMap map[string]string      `json:"uri_map"`
	Steps  []domain.HierarchyStep `json:"steps"`
	Reason domain.StopReason      `json:"reason"`
	Root   string                 `json:"root,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func newHierarchyResponse(source domain.Source, p *domain.HierarchyPath) HierarchyResponse {
	out := HierarchyResponse{
		URI:    p.URI,
		Found:  p.Found,
		Source: source,
		Paths:  []string{},
		URIMap: p.URIMap(),
		Steps:  p.Steps,
		Reason: p.Reason,
		Root:   p.Root,
		Error:  p.Error,
	}
	if len(p.Steps) > 0 {
		out.Label = p.Steps[0].Label
		out.Paths = append(out.Paths, p.Breadcrumb())
	}
	if out.Steps == nil {
		out.Steps = []domain.HierarchyStep{}
	}
	return out
}

// CacheStatsResponse reports cache counts.
type CacheStatsResponse struct {
	ConceptCount  int                                 `json:"concept_count"`
	LabelsCount   int                                 `json:"labels_count"`
	NotFoundCount int                                 `json:"not_found_count"`
	CacheDir      string                              `json:"cache_dir"`
	BySource      map[domain.Source]domain.SourceStat `json:"by_source"`
}
