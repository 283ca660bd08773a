package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"liquorpos/internal/core/apperror"
	"liquorpos/internal/core/id"
	"liquorpos/internal/domain/auth"
)

const usersTable = "sys_users"

var userColumns = []string{"id", "username", "password_hash", "role", "active", "created_at"}

// AuthRepo implements auth.Repository.
type AuthRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

var _ auth.Repository = (*AuthRepo)(nil)

func NewAuthRepo(txm *TxManager) *AuthRepo {
	return &AuthRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *AuthRepo) Create(ctx context.Context, u *auth.User) error {
	q := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(u.ID, u.Username, u.PasswordHash, u.Role, u.Active, u.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapError(err, "user")
	}
	return nil
}

func (r *AuthRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username}, username)
}

func (r *AuthRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID.String())
}

func (r *AuthRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*auth.User, error) {
	q := r.builder.Select(userColumns...).From(usersTable).Where(where).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u auth.User
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, mapError(err, "user")
	}
	return &u, nil
}
