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
	KeyAuthAccountInactive    = "auth.account_inactive"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserDeactivated    = "user.deactivated"
	KeyUserActivated      = "user.activated"
	KeyUserVerified       = "user.verified"

	// Access control
	KeyAccessDenied = "access.denied"

	// Orders
	KeyOrderCreated       = "order.created"
	KeyOrderUpdated       = "order.updated"
	KeyOrderNotFound      = "order.not_found"
	KeyOrderStatusChanged = "order.status_changed"
	KeyOrderLocked        = "order.locked"
	KeyOrderCancelled     = "order.cancelled"

	// Quotes
	KeyQuoteCreated  = "quote.created"
	KeyQuoteUpdated  = "quote.updated"
	KeyQuoteAccepted = "quote.accepted"
	KeyQuoteRejected = "quote.rejected"
	KeyQuoteNotFound = "quote.not_found"

	// Pricing factors
	KeyPricingFactorCreated     = "pricing_factor.created"
	KeyPricingFactorDeactivated = "pricing_factor.deactivated"
	KeyPricingFactorNotFound    = "pricing_factor.not_found"

	// Chat
	KeyMessagePosted   = "message.posted"
	KeyMessageDeleted  = "message.deleted"
	KeyMessageNotFound = "message.not_found"
	KeyMessagesRead    = "message.marked_read"

	// Files
	KeyFileUploaded = "file.uploaded"
	KeyFileDeleted  = "file.deleted"
	KeyFileNotFound = "file.not_found"
	KeyFileExpired  = "file.link_expired"
	KeyFileTokenNew = "file.token_issued"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
