// internal/models/user_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndCheckPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("S3cure!pass"))
	assert.NotEqual(t, "S3cure!pass", u.PasswordHash)

	assert.NoError(t, u.CheckPassword("S3cure!pass"))
	assert.Error(t, u.CheckPassword("wrong"))
}

func TestNextRating(t *testing.T) {
	// First review sets the average outright.
	avg, count := NextRating(0, 0, 4)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, int64(1), count)

	// 4.0 across 3 reviews plus a 5 is 4.25 across 4.
	avg, count = NextRating(4.0, 3, 5)
	assert.Equal(t, 4.25, avg)
	assert.Equal(t, int64(4), count)

	// Folding in sequentially matches a straight mean.
	avg, count = 0, 0
	ratings := []int{5, 3, 4, 4, 2}
	for _, r := range ratings {
		avg, count = NextRating(avg, count, r)
	}
	assert.Equal(t, int64(5), count)
	assert.InDelta(t, 3.6, avg, 0.0001)
}
