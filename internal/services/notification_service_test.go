// internal/services/notification_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookswap/bookswap-backend/internal/config"
)

func TestSendEmailSkipsWhenSMTPUnconfigured(t *testing.T) {
	// Without an SMTP host the email leg is a silent no-op, so the
	// money-movement notifications never fail on an unconfigured deployment.
	s := &NotificationService{config: &config.Config{}}

	assert.NoError(t, s.sendEmail("buyer@example.com", "Payment received", "Payment for your book has settled"))
}
