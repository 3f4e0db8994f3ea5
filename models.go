package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. Exactly one of the password credential or the
// (Provider, SocialID) pair is the authentication anchor; email uniqueness is
// enforced at the active-account level by the storage layer.
type User struct {
	bun.BaseModel    `bun:"table:users,alias:usr"`
	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role             UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Status           UserStatus `bun:"status,notnull" json:"status,omitempty"`
	FirstName        string     `bun:"first_name" json:"first_name,omitempty"`
	LastName         string     `bun:"last_name" json:"last_name,omitempty"`
	Email            string     `bun:"email" json:"email,omitempty"`
	Phone            string     `bun:"phone" json:"phone,omitempty"`
	PasswordHash     string     `bun:"password_hash" json:"-"`
	Provider         Provider   `bun:"provider,notnull" json:"provider,omitempty"`
	SocialID         string     `bun:"social_id" json:"social_id,omitempty"`
	ConfirmationHash string     `bun:"confirmation_hash" json:"-"`
	CreatedAt        *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt        *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureStatus backfills a missing status; records predating the status
// column behave as active.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// NormalizeEmail lowercases the stored email in place
func (u *User) NormalizeEmail() {
	u.Email = NormalizeEmail(u.Email)
}

// IsSocial reports whether the account is anchored on a federated identity
func (u *User) IsSocial() bool {
	return u.Provider != "" && u.Provider != ProviderEmail
}

// NormalizeEmail lowercases and trims an email address the way every lookup
// and every persisted record normalizes it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PasswordRecovery is a single-use capability granting one password reset.
// It is valid while not soft-deleted and is consumed (soft-deleted) by the
// reset that uses it.
type PasswordRecovery struct {
	bun.BaseModel `bun:"table:password_recoveries,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Hash          string     `bun:"hash,notnull,unique" json:"-"`
	UserID        *uuid.UUID `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
