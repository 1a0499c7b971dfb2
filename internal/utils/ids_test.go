// internal/utils/ids_test.go
package utils

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCorrelationIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^TXN-\d{13}-[0-9a-z]{9}$`)

	id := NewCorrelationID(TransactionPrefix)
	assert.True(t, pattern.MatchString(id), "unexpected id format: %s", id)

	parts := strings.SplitN(id, "-", 3)
	require.Len(t, parts, 3)

	millis, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().UnixMilli(), millis, 5000)
}

func TestNewCorrelationIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 10000; i++ {
		id := NewCorrelationID(ExchangePrefix)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id generated: %s", id)
		seen[id] = struct{}{}
	}
}
