// internal/utils/ids.go
package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	ExchangePrefix    = "EXC"
	TransactionPrefix = "TXN"

	correlationSuffixLen = 9
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewCorrelationID builds a human-readable id in the form
// <PREFIX>-<epochMillis>-<suffix9> used to correlate exchanges and
// transactions with the payment provider. The suffix is taken from the
// entropy segment of a monotonic ULID so ids generated within the same
// millisecond still never collide in-process.
func NewCorrelationID(prefix string) string {
	now := time.Now()

	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), entropy)
	entropyMu.Unlock()

	suffix := strings.ToLower(id.String())
	suffix = suffix[len(suffix)-correlationSuffixLen:]

	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix)
}
