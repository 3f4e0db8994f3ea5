package accounts

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a regular account (i.e. profile self-service)
	RoleUser UserRole = "user"
	// RoleAdmin is an admin account (i.e. admin login surface)
	RoleAdmin UserRole = "admin"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{RoleUser, RoleAdmin}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// UserStatus tracks the account lifecycle
type UserStatus = string

const (
	// UserStatusActive accounts can authenticate
	UserStatusActive UserStatus = "active"
	// UserStatusInactive accounts are pending email confirmation
	UserStatusInactive UserStatus = "inactive"
)

// IsValidStatus checks if the status is one of the predefined values
func IsValidStatus(s UserStatus) bool {
	switch s {
	case UserStatusActive, UserStatusInactive:
		return true
	default:
		return false
	}
}

// Provider identifies the identity source that anchors an account
type Provider = string

const (
	// ProviderEmail anchors the account on a password credential
	ProviderEmail Provider = "email"
	// ProviderFacebook anchors the account on a Facebook identity
	ProviderFacebook Provider = "facebook"
	// ProviderGoogle anchors the account on a Google identity
	ProviderGoogle Provider = "google"
	// ProviderTwitter anchors the account on a Twitter identity
	ProviderTwitter Provider = "twitter"
	// ProviderApple anchors the account on an Apple identity
	ProviderApple Provider = "apple"
)

// IsValidProvider checks if the provider tag is a known identity source
func IsValidProvider(p Provider) bool {
	switch p {
	case ProviderEmail, ProviderFacebook, ProviderGoogle, ProviderTwitter, ProviderApple:
		return true
	default:
		return false
	}
}

// GetSocialProviders returns the federated identity providers, i.e. every
// provider except the password-based email anchor.
func GetSocialProviders() []Provider {
	return []Provider{ProviderFacebook, ProviderGoogle, ProviderTwitter, ProviderApple}
}

// ParseProvider safely parses a string into a Provider tag
func ParseProvider(tag string) (Provider, bool) {
	p := Provider(tag)
	return p, IsValidProvider(p)
}
