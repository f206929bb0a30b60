// ABOUTME: Record metadata shared by every persisted entity.
// ABOUTME: IDs and timestamps are assigned by the store, never by callers.
package tracker

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Meta carries the identity and timestamps every record variant embeds.
// ID is immutable and unique within a collection once assigned.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) meta() *Meta { return m }

// Record is the contract every stored entity satisfies. The meta method
// is unexported so records stay a closed family and only the store
// assigns IDs and rewrites timestamps.
type Record[T any] interface {
	meta() *Meta
	Clone() T
}

// NewID returns a fresh lexicographically sortable record ID.
func NewID() string { return ulid.Make().String() }
