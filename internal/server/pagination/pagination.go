// Package pagination wraps counted queries in page envelopes.
package pagination

import (
	"context"
	"math"

	"github.com/dmitrijs2005/stockroom/internal/common"
)

// PageResult is the envelope returned by every paged listing.
type PageResult[E any] struct {
	Items      []E `json:"items"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Params selects one page; both values are 1-based and positive.
type Params struct {
	Size   int
	Number int
}

func (p Params) Skip() int { return p.Size * (p.Number - 1) }

func (p Params) Take() int { return p.Size }

// ParseOptional activates paging only when both size and number are given.
// Supplying just one of them yields nil, i.e. an unpaged result.
func ParseOptional(size, number *int) (*Params, error) {
	if size == nil || number == nil {
		return nil, nil
	}
	if *size < 1 {
		return nil, common.Validation("page size must be at least 1")
	}
	if *number < 1 {
		return nil, common.Validation("page number must be at least 1")
	}
	if *number > 1 && *size > math.MaxInt/(*number-1) {
		return nil, common.Validation("page %d of size %d is out of range", *number, *size)
	}
	return &Params{Size: *size, Number: *number}, nil
}

// TotalPages is ceil(total/size).
func TotalPages(total, size int) int {
	if size < 1 {
		return 0
	}
	return total/size + min(total%size, 1)
}

// Paginate counts the full result, then fetches the requested slice.
func Paginate[E any](
	ctx context.Context,
	p Params,
	count func(ctx context.Context) (int, error),
	fetch func(ctx context.Context, skip, take int) ([]E, error),
) (*PageResult[E], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}

	items := []E{}
	if p.Skip() < total {
		if items, err = fetch(ctx, p.Skip(), p.Take()); err != nil {
			return nil, err
		}
	}

	return &PageResult[E]{Items: items, TotalItems: total, TotalPages: TotalPages(total, p.Size)}, nil
}

// Map converts page items keeping the totals.
func Map[E, F any](page *PageResult[E], fn func(E) F) *PageResult[F] {
	out := &PageResult[F]{
		Items:      make([]F, len(page.Items)),
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
	for i, item := range page.Items {
		out.Items[i] = fn(item)
	}
	return out
}
