package driven

import (
	"context"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// Upstream is implemented once per external source.
//
// Every method classifies its failures into three outcomes: success,
// domain.ErrNotFound (the source says there is no such resource), or an
// error matching domain.ErrUpstream (transport, timeout, unexpected shape).
// Raw transport faults never escape.
//
// Adapters hold configuration only and no cache state.
type Upstream interface {
	// Source returns the source identifier this adapter serves.
	Source() domain.Source

	// Lookup fetches and normalises a concept, including labelled broader refs.
	Lookup(ctx context.Context, uri string) (*domain.Concept, error)

	// Labels fetches labels of uri in every language the source offers.
	Labels(ctx context.Context, uri string) (domain.Labels, error)

	// BroaderOf returns broader concepts in the source's preference order.
	// Lookup embeds the same refs; Search uses BroaderOf on its best hit.
	BroaderOf(ctx context.Context, uri string) ([]domain.BroaderRef, error)

	// Search finds the best concept for a label in lang. An exact match on
	// the preferred or an alternative label wins over the first hit.
	Search(ctx context.Context, label, lang string) (*domain.Concept, error)
}
