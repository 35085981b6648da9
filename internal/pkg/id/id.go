package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string, used to assign an event id when a push
// delivery arrives without one. ULIDs are lexicographically sortable by
// creation time, so event ids double as a rough arrival order in logs.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
