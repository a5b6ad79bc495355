package domain

import (
	"fmt"
	"sort"
)

// ReviewState tracks which card positions have been revealed since the deck
// was last replaced, shuffled or reset.
type ReviewState struct {
	TotalCount int
	reviewed   map[int]struct{}
}

// NewReviewState returns an empty review state for a deck of total cards.
func NewReviewState(total int) ReviewState {
	return ReviewState{TotalCount: total, reviewed: make(map[int]struct{})}
}

// MarkReviewed adds index to the reviewed set. Marking an index twice is a no-op.
func (r *ReviewState) MarkReviewed(index int) error {
	if index < 0 || index >= r.TotalCount {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, r.TotalCount)
	}
	if r.reviewed == nil {
		r.reviewed = make(map[int]struct{})
	}
	r.reviewed[index] = struct{}{}
	return nil
}

// Reset clears the reviewed set, keeping the total.
func (r *ReviewState) Reset() {
	r.reviewed = make(map[int]struct{})
}

// Has reports whether index has been reviewed.
func (r ReviewState) Has(index int) bool {
	_, ok := r.reviewed[index]
	return ok
}

// Count returns the number of reviewed cards.
func (r ReviewState) Count() int {
	return len(r.reviewed)
}

// Indices returns the reviewed positions in ascending order.
func (r ReviewState) Indices() []int {
	out := make([]int, 0, len(r.reviewed))
	for i := range r.reviewed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Progress returns the reviewed share as a whole percentage.
func (r ReviewState) Progress() int {
	if r.TotalCount == 0 {
		return 0
	}
	return r.Count() * 100 / r.TotalCount
}

// Clone returns an independent copy.
func (r ReviewState) Clone() ReviewState {
	c := NewReviewState(r.TotalCount)
	for i := range r.reviewed {
		c.reviewed[i] = struct{}{}
	}
	return c
}
