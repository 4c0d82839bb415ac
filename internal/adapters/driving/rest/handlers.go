package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tingbok/tingbok/internal/core/domain"
	"github.com/tingbok/tingbok/internal/logger"
)

const (
	// defaultLanguages is used when a labels request names none.
	defaultLanguages = "en,nb,de"
	// defaultLabelSource and defaultLabelLang apply to label lookups.
	defaultLabelSource = domain.SourceAgrovoc
	defaultLabelLang   = "en"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: s.opts.Version})
}

// conceptKey reads uri and the optional explicit source.
func conceptKey(c *gin.Context) (domain.ConceptKey, bool) {
	uri := strings.TrimSpace(c.Query("uri"))
	if uri == "" {
		abortWithDetail(c, http.StatusBadRequest, "query parameter 'uri' is required")
		return domain.ConceptKey{}, false
	}
	name := strings.TrimSpace(c.Query("source"))
	if name == "" {
		key, err := domain.KeyForURI(uri)
		if err != nil {
			abortWithError(c, err)
			return domain.ConceptKey{}, false
		}
		return key, true
	}
	source := domain.Source(name)
	if !source.IsValid() {
		abortWithError(c, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, name))
		return domain.ConceptKey{}, false
	}
	return domain.ConceptKey{Source: source, URI: uri}, true
}

// labelQuery reads label, lang and source for a label lookup.
func labelQuery(c *gin.Context) (domain.Source, string, string, bool) {
	label := strings.TrimSpace(c.Query("label"))
	if label == "" {
		abortWithDetail(c, http.StatusBadRequest, "query parameter 'label' is required")
		return "", "", "", false
	}
	lang := strings.TrimSpace(c.DefaultQuery("lang", defaultLabelLang))
	source := domain.Source(strings.TrimSpace(c.DefaultQuery("source", string(defaultLabelSource))))
	if !source.IsValid() {
		abortWithError(c, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, source))
		return "", "", "", false
	}
	return source, label, lang, true
}

func parseLanguages(raw string) []string {
	var out []string
	for _, lang := range strings.Split(raw, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			out = append(out, lang)
		}
	}
	return out
}

func (s *Server) handleConcept(c *gin.Context) {
	key, ok := conceptKey(c)
	if !ok {
		return
	}

	res, err := s.ports.Resolver.Resolve(c.Request.Context(), key, domain.KindConcept)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !res.Found {
		abortWithError(c, fmt.Errorf("%w: concept %s", domain.ErrNotFound, key.URI))
		return
	}

	var labels domain.Labels
	lres, err := s.ports.Resolver.Resolve(c.Request.Context(), key, domain.KindLabels)
	switch {
	case err != nil:
		logger.Debug("labels for %s unavailable: %v", key.URI, err)
	case lres.Found:
		labels = lres.Labels.Filter(parseLanguages(c.Query("languages")))
	}
	c.JSON(http.StatusOK, newConceptResponse(res, labels))
}

func (s *Server) handleLookup(c *gin.Context) {
	source, label, lang, ok := labelQuery(c)
	if !ok {
		return
	}

	res, err := s.ports.Resolver.ResolveLabel(c.Request.Context(), source, label, lang)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !res.Found {
		abortWithDetail(c, http.StatusNotFound, fmt.Sprintf("No %s concept found for label '%s' (%s)", source, label, lang))
		return
	}

	var labels domain.Labels
	key := domain.ConceptKey{Source: source, URI: res.Concept.URI}
	lres, err := s.ports.Resolver.Resolve(c.Request.Context(), key, domain.KindLabels)
	switch {
	case err != nil:
		logger.Debug("labels for %s unavailable: %v", key.URI, err)
	case lres.Found:
		labels = lres.Labels.Filter(parseLanguages(c.Query("languages")))
	}
	c.JSON(http.StatusOK, newConceptResponse(res, labels))
}

func (s *Server) handleLabels(c *gin.Context) {
	key, ok := conceptKey(c)
	if !ok {
		return
	}
	languages := parseLanguages(c.DefaultQuery("languages", defaultLanguages))

	res, err := s.ports.Resolver.Resolve(c.Request.Context(), key, domain.KindLabels)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !res.Found {
		abortWithError(c, fmt.Errorf("%w: labels for %s", domain.ErrNotFound, key.URI))
		return
	}
	c.JSON(http.StatusOK, LabelsResponse{
		URI:    key.URI,
		Labels: res.Labels.Filter(languages),
		Source: key.Source,
		Origin: res.Origin,
	})
}

func (s *Server) handleBatchLabels(c *gin.Context) {
	var req BatchLabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	results := s.ports.Resolver.ResolveLabelsBatch(c.Request.Context(), req.URIs, req.Languages)
	out := BatchLabelsResponse{
		Labels:  make(map[string]domain.Labels, len(results)),
		Results: results,
	}
	for _, r := range results {
		if r.Status == domain.OutcomeFound {
			out.Labels[r.URI] = r.Labels
		}
	}
	c.JSON(http.StatusOK, out)
}

// handleHierarchy walks from a concept URI, or from the best match for a
// label when uri is absent.
func (s *Server) handleHierarchy(c *gin.Context) {
	if s.ports.Hierarchy == nil {
		abortWithError(c, domain.ErrNotImplemented)
		return
	}
	maxDepth := 0
	if raw := c.Query("max_depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			abortWithDetail(c, http.StatusBadRequest, "max_depth must be an integer between 1 and 100")
			return
		}
		maxDepth = n
	}

	if strings.TrimSpace(c.Query("uri")) == "" && c.Query("label") != "" {
		source, label, lang, ok := labelQuery(c)
		if !ok {
			return
		}
		path, err := s.ports.Hierarchy.ResolveHierarchyLabel(c.Request.Context(), source, label, lang, maxDepth)
		if err != nil {
			abortWithError(c, err)
			return
		}
		out := newHierarchyResponse(source, path)
		out.Label = label
		c.JSON(http.StatusOK, out)
		return
	}

	key, ok := conceptKey(c)
	if !ok {
		return
	}
	// The walk follows the URI's owning source; an explicit source must agree.
	owner, err := domain.KeyForURI(key.URI)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if owner.Source != key.Source {
		abortWithError(c, fmt.Errorf("%w: %s is not a %s concept", domain.ErrInvalidInput, key.URI, key.Source))
		return
	}

	path, err := s.ports.Hierarchy.ResolveHierarchy(c.Request.Context(), key.URI, maxDepth)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newHierarchyResponse(key.Source, path))
}

func (s *Server) handleCacheStats(c *gin.Context) {
	if s.ports.Stats == nil {
		abortWithError(c, domain.ErrNotImplemented)
		return
	}
	stats, err := s.ports.Stats.CacheStats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, CacheStatsResponse{
		ConceptCount:  stats.Concepts,
		LabelsCount:   stats.Labels,
		NotFoundCount: stats.NotFound,
		CacheDir:      stats.Location,
		BySource:      stats.BySource,
	})
}

func (s *Server) handleVocabulary(c *gin.Context) {
	if s.ports.Vocabulary == nil {
		abortWithError(c, domain.ErrNotImplemented)
		return
	}
	all, err := s.ports.Vocabulary.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (s *Server) handleVocabularyConcept(c *gin.Context) {
	if s.ports.Vocabulary == nil {
		abortWithError(c, domain.ErrNotImplemented)
		return
	}
	id := strings.TrimPrefix(c.Param("id"), "/")
	concept, err := s.ports.Vocabulary.Get(c.Request.Context(), id)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			abortWithDetail(c, http.StatusNotFound, fmt.Sprintf("Concept '%s' not found", id))
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, concept)
}

// handleEAN is a placeholder until product lookups are wired in.
func (s *Server) handleEAN(c *gin.Context) {
	abortWithDetail(c, http.StatusNotImplemented,
		fmt.Sprintf("EAN lookup not yet implemented (ean=%s)", c.Param("ean")))
}
