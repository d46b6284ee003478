package store

import "context"

// ConsistencyLevel selects where a store read may be served from.
// Reads inside InTx always use the transaction on the primary, whatever the context says.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. It is the default.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency may read from the replica. Listings and the overdue scan use it;
	// anything that decides on inventory or payment state must not.
	EventualConsistency
)

type consistencyKey struct{}

// WithStrongConsistency marks reads made with the returned context as primary-only.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyKey{}, StrongConsistency)
}

// WithEventualConsistency allows reads made with the returned context to hit the replica.
//
//	borrowings, err := s.Borrowings(store.WithEventualConsistency(ctx), filter)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, consistencyKey{}, EventualConsistency)
}

// ConsistencyLevelOf returns the level carried by ctx, StrongConsistency when none is set.
func ConsistencyLevelOf(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(consistencyKey{}).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
