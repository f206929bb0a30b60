package tracker

import "context"

// Order names the remote-side sort applied to listings and pushes.
type Order struct {
	Field string // domain field name, e.g. "date" or "dueDate"
	Desc  bool
}

// Mirror is one user's sub-collection in the remote document store.
// All methods are best-effort from the store's perspective: failures
// degrade sync status, never local correctness.
type Mirror[T Record[T]] interface {
	// ListAll returns the full remote snapshot in the given order.
	ListAll(ctx context.Context, order Order) ([]T, error)
	// UpsertOne writes the full record document; the server stamps a
	// modification time that is stripped before documents come back.
	UpsertOne(ctx context.Context, rec T) error
	// DeleteOne removes the document with the record's id.
	DeleteOne(ctx context.Context, id string) error
	// Subscribe opens a long-lived push channel. onChange fires once
	// immediately with the current remote state and again on every
	// subsequent remote mutation from any client, always with the full
	// snapshot. The returned stop func releases the channel; callers
	// must stop a prior subscription before opening a new one.
	Subscribe(order Order, onChange func([]T), onError func(error)) (stop func(), err error)
}

// MirrorProvider scopes mirrors to one owning user at a time. The
// store only ever asks for a mirror when the identity is sync-eligible.
type MirrorProvider[T Record[T]] interface {
	ForUser(userID string) Mirror[T]
}
