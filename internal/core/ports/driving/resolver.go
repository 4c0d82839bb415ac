package driving

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// ResolverService is the cache-first concept resolution API.
type ResolverService interface {
	// Resolve serves (key, kind) from cache or the owning upstream.
	// NotFound is reported as Resolution.Found == false, not as an error.
	// Errors match domain.ErrUnsupportedSource or domain.ErrUpstream.
	Resolve(ctx context.Context, key domain.ConceptKey, kind domain.Kind) (*domain.Resolution, error)

	// ResolveURI derives the source from the URI namespace and resolves it.
	ResolveURI(ctx context.Context, uri string, kind domain.Kind) (*domain.Resolution, error)

	// ResolveLabel finds a concept by label in one source. Results are
	// cached under the label key, negatives included.
	ResolveLabel(ctx context.Context, source domain.Source, label, lang string) (*domain.Resolution, error)

	// ResolveLabels resolves labels for uri filtered to languages (all when empty).
	ResolveLabels(ctx context.Context, uri string, languages []string) (*domain.Resolution, error)

	// ResolveLabelsBatch resolves every URI independently. One URI's failure
	// never aborts the batch; outcomes are returned in input order.
	ResolveLabelsBatch(ctx context.Context, uris []string, languages []string) []domain.LabelsOutcome
}
