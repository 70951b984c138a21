package model

// PageContent is the fused website content for a single company. It is
// owned exclusively by the company it was fetched for and is never shared
// between candidates.
type PageContent struct {
	URL             string            `json:"url"`
	Title           string            `json:"title,omitempty"`
	MetaDescription string            `json:"meta_description,omitempty"`
	Headings        []string          `json:"headings,omitempty"`
	Paragraphs      []string          `json:"paragraphs,omitempty"`
	ListItems       []string          `json:"list_items,omitempty"`
	Text            string            `json:"text"`
	HTML            string            `json:"html,omitempty"`
	SubPages        map[string]string `json:"sub_pages,omitempty"`
}

// NetworkProfile is the typed form of a professional-network profile.
// Raw actor payloads are converted at the source-matcher boundary;
// untyped maps never travel past it.
type NetworkProfile struct {
	Name          string   `json:"name"`
	URL           string   `json:"url"`
	Website       string   `json:"website,omitempty"`
	Tagline       string   `json:"tagline,omitempty"`
	About         string   `json:"about,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	Specialties   []string `json:"specialties,omitempty"`
	FollowerCount int      `json:"follower_count,omitempty"`
	EmployeeCount string   `json:"employee_count,omitempty"`
	FoundedYear   int      `json:"founded_year,omitempty"`
	Locations     []string `json:"locations,omitempty"`
}

// SignalType distinguishes the two kinds of contact signal.
type SignalType string

const (
	SignalEmail SignalType = "email"
	SignalPhone SignalType = "phone"
)

// ContactSignal is one extracted contact datum with its discovery strategy
// and a deterministic confidence in [0.1, 1.0].
type ContactSignal struct {
	Type                 SignalType `json:"type"`
	Value                string     `json:"value"`
	Raw                  string     `json:"raw,omitempty"`
	Strategy             string     `json:"strategy"`
	Confidence           float64    `json:"confidence"`
	IsPrimaryDomainMatch bool       `json:"is_primary_domain_match"`
}
