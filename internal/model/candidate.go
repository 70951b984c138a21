package model

// Provenance records which discovery tier produced a candidate. Synthetic
// fallback candidates must stay distinguishable from genuine discoveries
// all the way through the pipeline.
type Provenance string

const (
	ProvenanceStrict   Provenance = "strict"
	ProvenanceBroad    Provenance = "broad"
	ProvenanceGeneric  Provenance = "generic"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceSearch   Provenance = "search"
)

// Synthetic reports whether the candidate is demo data rather than a real
// discovery.
func (p Provenance) Synthetic() bool {
	return p == ProvenanceFallback
}

// CompanyCandidate is a company identified by discovery, not yet enriched
// or analyzed. Enrichment fills ProfileURL in place when a network profile
// is resolved.
type CompanyCandidate struct {
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Snippet    string     `json:"snippet,omitempty"`
	ProfileURL string     `json:"profile_url,omitempty"`
	Provenance Provenance `json:"provenance"`
}
