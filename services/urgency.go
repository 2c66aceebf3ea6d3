package services

import "errors"

// ErrInconsistentAggregate means the stored aggregate claims an existing vote
// while the count is zero. The invariant count == len(votes) makes that state
// unreachable; surfacing it beats dividing by zero quietly.
var ErrInconsistentAggregate = errors.New("urgency aggregate is inconsistent with vote list")

// VoteAggregate is the running urgency state of a report.
type VoteAggregate struct {
	Score float64
	Count int
}

// NextAggregate computes the aggregate after userID's vote lands. existing is
// the voter's prior value, nil for a first-time vote. A revote keeps the count
// and swaps the old value out of the mean; a fresh vote grows both.
//
// The vote value domain (1..5) is enforced by callers before this point.
func NextAggregate(agg VoteAggregate, existing *int, newVote int) (VoteAggregate, error) {
	if existing != nil {
		if agg.Count == 0 {
			return VoteAggregate{}, ErrInconsistentAggregate
		}
		score := (agg.Score*float64(agg.Count) - float64(*existing) + float64(newVote)) / float64(agg.Count)
		return VoteAggregate{Score: score, Count: agg.Count}, nil
	}

	count := agg.Count + 1
	score := (agg.Score*float64(agg.Count) + float64(newVote)) / float64(count)
	return VoteAggregate{Score: score, Count: count}, nil
}
