package crud

import (
	"encoding/json"
)

// Result holds either typed items or, when a projection was requested,
// projected records.
type Result[D any] struct {
	Items   []D
	Records []map[string]any
}

func (r Result[D]) Projected() bool { return r.Records != nil }

func (r Result[D]) Len() int {
	if r.Projected() {
		return len(r.Records)
	}
	return len(r.Items)
}

func (r Result[D]) payload() any {
	if r.Projected() {
		return r.Records
	}
	if r.Items == nil {
		return []D{}
	}
	return r.Items
}

// MarshalJSON renders the populated slice as a plain array.
func (r Result[D]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.payload())
}

// PagedResult is one page of a Result with the totals of the whole listing.
type PagedResult[D any] struct {
	Result[D]
	TotalItems int
	TotalPages int
}

func (p PagedResult[D]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Items      any `json:"items"`
		TotalItems int `json:"totalItems"`
		TotalPages int `json:"totalPages"`
	}{p.payload(), p.TotalItems, p.TotalPages})
}
