package accounts

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ResetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string, roles ...UserRole) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string, roles ...UserRole) (*User, error)
	GetBySocial(ctx context.Context, provider Provider, socialID string) (*User, error)
	GetBySocialTx(ctx context.Context, tx bun.IDB, provider Provider, socialID string) (*User, error)
	GetByConfirmationHash(ctx context.Context, hash string) (*User, error)
	GetByConfirmationHashTx(ctx context.Context, tx bun.IDB, hash string) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error

	SoftDelete(ctx context.Context, id uuid.UUID) error
	SoftDeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string, roles ...UserRole) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email, roles...)
}

// GetByEmailTx looks up the unique non-deleted account matching the
// lowercased email, optionally constrained to a set of eligible roles.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, roles ...UserRole) (*User, error) {
	record := &User{}
	q := tx.NewSelect().Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email))

	if len(roles) > 0 {
		q.Where("?TableAlias.user_role IN (?)", bun.In(roles))
	}

	if err := q.Limit(1).Scan(ctx); err != nil {
		if isEmptyResult(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": NormalizeEmail(email)})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetBySocial(ctx context.Context, provider Provider, socialID string) (*User, error) {
	return a.GetBySocialTx(ctx, a.db, provider, socialID)
}

// GetBySocialTx looks up an account by its exact (provider, socialID) pair.
func (a *users) GetBySocialTx(ctx context.Context, tx bun.IDB, provider Provider, socialID string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().Model(record).
		Where("?TableAlias.provider = ?", provider).
		Where("?TableAlias.social_id = ?", socialID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isEmptyResult(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"provider":  provider,
					"social_id": socialID,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByConfirmationHash(ctx context.Context, hash string) (*User, error) {
	return a.GetByConfirmationHashTx(ctx, a.db, hash)
}

func (a *users) GetByConfirmationHashTx(ctx context.Context, tx bun.IDB, hash string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().Model(record).
		Where("?TableAlias.confirmation_hash = ?", hash).
		Where("?TableAlias.confirmation_hash <> ''").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isEmptyResult(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"hash": hash})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	return a.CreateTx(ctx, tx, user)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.ResetPasswordTx(ctx, a.db, id, passwordHash)
}

func (a *users) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, ResetUserPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return a.SoftDeleteTx(ctx, a.db, id)
}

// SoftDeleteTx marks the account deleted; the soft_delete model tag turns
// this into an UPDATE of deleted_at, the record stays for audit.
func (a *users) SoftDeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.Provider == "" {
		record.Provider = ProviderEmail
	}

	record.EnsureStatus()
	record.NormalizeEmail()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func isEmptyResult(err error) bool {
	if err == nil {
		return false
	}
	if repository.IsRecordNotFound(err) {
		return true
	}
	return strings.Contains(err.Error(), "no rows in result set")
}
