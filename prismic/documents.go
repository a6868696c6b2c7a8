package prismic

import (
	"encoding/json"
)

// API is the repository root document returned by the API endpoint.
type API struct {
	Refs  []Ref             `json:"refs"`
	Types map[string]string `json:"types"`
}

// Ref is a content release reference.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// MasterRef returns the ref of the published content release.
func (a API) MasterRef() (string, bool) {
	for _, r := range a.Refs {
		if r.IsMasterRef {
			return r.Ref, true
		}
	}
	return "", false
}

// Response is one page of a documents search.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Next returns the next page URL, or "" when this is the last page.
func (r Response) Next() string {
	if r.NextPage == nil {
		return ""
	}
	return *r.NextPage
}

// Document is a single CMS document. Data is left raw so callers can decode
// it into their own custom type shape.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Type                 string          `json:"type"`
	Lang                 string          `json:"lang"`
	Tags                 []string        `json:"tags"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	LastPublicationDate  *string         `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

// DecodeData unmarshals the document's data field into v.
func (d Document) DecodeData(v any) error {
	if len(d.Data) == 0 {
		return nil
	}
	return json.Unmarshal(d.Data, v)
}
