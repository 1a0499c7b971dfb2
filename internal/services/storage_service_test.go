// internal/services/storage_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookswap/bookswap-backend/internal/config"
)

func TestNewStorageServiceWithoutCredentialsUsesLocalDisk(t *testing.T) {
	cfg := &config.Config{}

	s, err := NewStorageService(cfg)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Nil(t, s.s3Client)
}

func TestNewLocalStorageService(t *testing.T) {
	// The fallback constructor never fails, so the router always has a
	// usable upload target even when the S3 session cannot be built.
	s := NewLocalStorageService(&config.Config{})
	require.NotNil(t, s)
	assert.Nil(t, s.s3Client)
}
