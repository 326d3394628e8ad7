package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/quorahq/accountserver/internal/store"
	"github.com/quorahq/accountserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) (types.Session, error)
	GetByToken(ctx context.Context, token string) (types.Session, error)
	MarkLoggedOut(ctx context.Context, id int64, at time.Time) error
}

// Repositories is the set of repositories bound to one unit of work.
type Repositories interface {
	Users() UserRepository
	Sessions() SessionRepository
}

// Store runs units of work. Everything fn does through repos commits or
// rolls back together.
type Store interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// SQLStore is the PostgreSQL-backed Store.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Atomic(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return store.WithTx(ctx, s.db, nil, func(ctx context.Context, tx store.DBTX) error {
		return fn(ctx, sqlRepositories{tx: tx})
	})
}

type sqlRepositories struct {
	tx store.DBTX
}

func (r sqlRepositories) Users() UserRepository {
	return store.NewUserRepository(r.tx)
}

func (r sqlRepositories) Sessions() SessionRepository {
	return store.NewSessionRepository(r.tx)
}
