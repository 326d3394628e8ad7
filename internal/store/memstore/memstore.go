// Package memstore is an in-process Store for local runs and tests. It
// enforces the same uniqueness rules as the PostgreSQL schema and applies a
// unit of work only if it returns nil.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quorahq/accountserver/internal/services"
	"github.com/quorahq/accountserver/internal/store"
	"github.com/quorahq/accountserver/types"
)

type state struct {
	users         map[string]types.User
	usernames     map[string]string
	emails        map[string]string
	sessions      map[int64]types.Session
	tokens        map[string]int64
	nextSessionID int64
}

func newState() *state {
	return &state{
		users:     make(map[string]types.User),
		usernames: make(map[string]string),
		emails:    make(map[string]string),
		sessions:  make(map[int64]types.Session),
		tokens:    make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:         make(map[string]types.User, len(s.users)),
		usernames:     make(map[string]string, len(s.usernames)),
		emails:        make(map[string]string, len(s.emails)),
		sessions:      make(map[int64]types.Session, len(s.sessions)),
		tokens:        make(map[string]int64, len(s.tokens)),
		nextSessionID: s.nextSessionID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.usernames {
		c.usernames[k] = v
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	return c
}

// Store holds users and sessions in memory. Units of work are serialized.
type Store struct {
	mu    sync.Mutex
	state *state
}

func New() *Store {
	return &Store{state: newState()}
}

// Atomic runs fn against a copy of the current state and publishes the copy
// only when fn succeeds.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, repos services.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(ctx, repositories{state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type repositories struct {
	state *state
}

func (r repositories) Users() services.UserRepository {
	return userRepository(r)
}

func (r repositories) Sessions() services.SessionRepository {
	return sessionRepository(r)
}

type userRepository struct {
	state *state
}

// GetByID looks ids up in canonical UUID form, so upper-case, braced and
// urn:uuid: spellings find the same user.
func (r userRepository) GetByID(_ context.Context, id string) (types.User, error) {
	if parsed, err := uuid.Parse(id); err == nil {
		id = parsed.String()
	}
	user, ok := r.state.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r userRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	id, ok := r.state.usernames[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	id, ok := r.state.emails[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r userRepository) Create(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.state.usernames[user.Username]; ok {
		return types.User{}, store.ErrUsernameTaken
	}
	if _, ok := r.state.emails[user.Email]; ok {
		return types.User{}, store.ErrEmailTaken
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.state.users[user.ID] = user
	r.state.usernames[user.Username] = user.ID
	r.state.emails[user.Email] = user.ID
	return user, nil
}

type sessionRepository struct {
	state *state
}

func (r sessionRepository) Create(_ context.Context, session types.Session) (types.Session, error) {
	if _, ok := r.state.tokens[session.AccessToken]; ok {
		return types.Session{}, store.ErrDuplicateToken
	}
	r.state.nextSessionID++
	session.ID = r.state.nextSessionID
	r.state.sessions[session.ID] = session
	r.state.tokens[session.AccessToken] = session.ID
	return session, nil
}

func (r sessionRepository) GetByToken(_ context.Context, token string) (types.Session, error) {
	id, ok := r.state.tokens[token]
	if !ok {
		return types.Session{}, store.ErrNotFound
	}
	return r.state.sessions[id], nil
}

func (r sessionRepository) MarkLoggedOut(_ context.Context, id int64, at time.Time) error {
	session, ok := r.state.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	session.LogoutAt = &at
	r.state.sessions[id] = session
	return nil
}
