package xtesting

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// UniqueName returns a unique name with the given prefix.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

var counters sync.Map

// SequentialName returns a unique name with the given prefix. Names that share
// a prefix are numbered sequentially from 1.
func SequentialName(prefix string) string {
	v, _ := counters.LoadOrStore(prefix, &atomic.Uint64{})
	return fmt.Sprintf("%s-%d", prefix, v.(*atomic.Uint64).Add(1))
}
