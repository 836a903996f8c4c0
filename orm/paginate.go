package orm

import (
	"github.com/iov-one/weave-editions/errors"
)

// Paginate returns the [start, end) window of a collection with size
// elements, as requested by a listing query.
//
// from must point at an existing element. A limit of zero means no limit.
// Callers that need to reject an explicit zero limit must check it before
// calling.
func Paginate(size, from, limit uint64) (uint64, uint64, error) {
	if from >= size {
		return 0, 0, errors.Wrap(errors.ErrLimit, "Out of bounds, please use a smaller from_index.")
	}
	end := size
	if limit != 0 && size-from > limit {
		end = from + limit
	}
	return from, end, nil
}

// PageRequest is the pagination part of every listing query.
type PageRequest struct {
	// FromIndex is the position of the first element to return.
	FromIndex uint64 `json:"from_index"`
	// Limit is the maximum number of elements to return. Nil means no
	// limit. Zero is not allowed.
	Limit *uint64 `json:"limit,omitempty"`
}

// Window validates the request and returns the window of a collection with
// size elements.
func (p PageRequest) Window(size uint64) (uint64, uint64, error) {
	limit, err := p.limit()
	if err != nil {
		return 0, 0, err
	}
	return Paginate(size, p.FromIndex, limit)
}

// limit returns the requested limit, with zero meaning no limit.
func (p PageRequest) limit() (uint64, error) {
	if p.Limit == nil {
		return 0, nil
	}
	if *p.Limit == 0 {
		return 0, errors.Wrap(errors.ErrLimit, "Cannot provide limit of 0.")
	}
	return *p.Limit, nil
}
