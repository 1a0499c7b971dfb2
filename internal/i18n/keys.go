// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAccessDenied           = "auth.access_denied"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserProfileUpdated = "user.profile_updated"

	// Books
	KeyBookCreated  = "book.created"
	KeyBookUpdated  = "book.updated"
	KeyBookDeleted  = "book.deleted"
	KeyBookNotFound = "book.not_found"

	// Exchanges
	KeyExchangeCreated   = "exchange.created"
	KeyExchangeAccepted  = "exchange.accepted"
	KeyExchangeRejected  = "exchange.rejected"
	KeyExchangeCountered = "exchange.countered"
	KeyExchangeCompleted = "exchange.completed"
	KeyExchangeCancelled = "exchange.cancelled"
	KeyExchangeNotFound  = "exchange.not_found"

	// Transactions
	KeyTransactionCreated   = "transaction.created"
	KeyTransactionVerified  = "transaction.payment_verified"
	KeyTransactionUpdated   = "transaction.updated"
	KeyTransactionCancelled = "transaction.cancelled"
	KeyTransactionNotFound  = "transaction.not_found"

	// Reviews
	KeyReviewCreated  = "review.created"
	KeyReviewNotFound = "review.not_found"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"
)
