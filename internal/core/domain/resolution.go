package domain

// Origin says where a resolution was served from.
type Origin string

// Resolution origins.
const (
	OriginCache    Origin = "cache"
	OriginUpstream Origin = "upstream"
)

// Resolution is the outcome of resolving one (key, kind) pair.
// Found is false for authoritative NotFound results, which are not errors.
type Resolution struct {
	Key     ConceptKey `json:"key"`
	Kind    Kind       `json:"kind"`
	Found   bool       `json:"found"`
	Origin  Origin     `json:"origin"`
	Concept *Concept   `json:"concept,omitempty"`
	Labels  Labels     `json:"labels,omitempty"`
}

// Clone returns a copy that shares nothing mutable with r.
func (r *Resolution) Clone() *Resolution {
	if r == nil {
		return nil
	}
	out := *r
	out.Concept = r.Concept.Clone()
	if r.Labels != nil {
		out.Labels = r.Labels.Filter(nil)
	}
	return &out
}

// OutcomeStatus classifies a per-URI batch result.
type OutcomeStatus string

// Batch outcome statuses.
const (
	OutcomeFound       OutcomeStatus = "found"
	OutcomeNotFound    OutcomeStatus = "not_found"
	OutcomeError       OutcomeStatus = "error"
	OutcomeUnsupported OutcomeStatus = "unsupported"
)

// LabelsOutcome is one entry of a batch label resolution.
type LabelsOutcome struct {
	URI    string        `json:"uri"`
	Status OutcomeStatus `json:"status"`
	Labels Labels        `json:"labels,omitempty"`
	Origin Origin        `json:"origin,omitempty"`
	Error  string        `json:"error,omitempty"`
}
