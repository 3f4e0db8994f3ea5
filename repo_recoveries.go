package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type PasswordRecoveries interface {
	repository.Repository[*PasswordRecovery]

	GetByHash(ctx context.Context, hash string) (*PasswordRecovery, error)
	GetByHashTx(ctx context.Context, tx bun.IDB, hash string) (*PasswordRecovery, error)

	Consume(ctx context.Context, hash string) (*PasswordRecovery, error)
	ConsumeTx(ctx context.Context, tx bun.IDB, hash string) (*PasswordRecovery, error)
}

type recoveries struct {
	repository.Repository[*PasswordRecovery]
	db *bun.DB
}

var (
	_ PasswordRecoveries                       = (*recoveries)(nil)
	_ repository.Repository[*PasswordRecovery] = (*recoveries)(nil)
)

func NewPasswordRecoveriesRepository(db *bun.DB) PasswordRecoveries {
	repo := repository.NewRepository[*PasswordRecovery](db, repository.ModelHandlers[*PasswordRecovery]{
		NewRecord: func() *PasswordRecovery { return &PasswordRecovery{} },
		GetID: func(r *PasswordRecovery) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *PasswordRecovery, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "hash"
		},
	})

	return &recoveries{
		Repository: repo,
		db:         db,
	}
}

func (a *recoveries) GetByHash(ctx context.Context, hash string) (*PasswordRecovery, error) {
	return a.GetByHashTx(ctx, a.db, hash)
}

// GetByHashTx finds an outstanding (non-deleted) recovery by its exact hash.
func (a *recoveries) GetByHashTx(ctx context.Context, tx bun.IDB, hash string) (*PasswordRecovery, error) {
	record := &PasswordRecovery{}
	err := tx.NewSelect().Model(record).
		Where("?TableAlias.hash = ?", hash).
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

func (a *recoveries) Consume(ctx context.Context, hash string) (*PasswordRecovery, error) {
	return a.ConsumeTx(ctx, a.db, hash)
}

// ConsumeTx soft-deletes the recovery and returns the consumed row in one
// conditional statement; the implicit deleted_at guard makes consumption
// atomic, so two concurrent resets racing on the same hash cannot both use
// the ticket.
func (a *recoveries) ConsumeTx(ctx context.Context, tx bun.IDB, hash string) (*PasswordRecovery, error) {
	record := &PasswordRecovery{}
	_, err := tx.NewDelete().
		Model(record).
		Where("?TableAlias.hash = ?", hash).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if isEmptyResult(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"hash": hash})
		}
		return nil, err
	}

	return record, nil
}
