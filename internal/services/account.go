package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quorahq/accountserver/internal/auth"
	"github.com/quorahq/accountserver/internal/logging"
	"github.com/quorahq/accountserver/internal/store"
	"github.com/quorahq/accountserver/types"
)

// PasswordHasher derives salts and salted password hashes.
type PasswordHasher interface {
	DeriveSalt() (string, error)
	Hash(password, salt string) string
	Verify(password, salt, storedHash string) bool
}

// TokenIssuer mints access tokens for a validity window.
type TokenIssuer interface {
	Issue(userID string, issuedAt, expiresAt time.Time) (string, error)
}

// RegisterInput carries the fields accepted at signup.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	FirstName     string
	LastName      string
	Country       string
	AboutMe       string
	DOB           string
	ContactNumber string
}

// AccountService encapsulates the signup, signin, signout and profile use-cases.
type AccountService struct {
	store      Store
	hasher     PasswordHasher
	tokens     TokenIssuer
	events     *eventEmitter
	log        logging.Logger
	sessionTTL time.Duration
	now        func() time.Time
	newID      func() string
}

// AccountOption customizes an AccountService.
type AccountOption func(*AccountService)

// WithSessionTTL overrides the validity window of issued sessions.
func WithSessionTTL(ttl time.Duration) AccountOption {
	return func(s *AccountService) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AccountOption {
	return func(s *AccountService) {
		s.now = now
	}
}

// WithEvents publishes account lifecycle events to channel.
func WithEvents(publisher EventPublisher, channel string) AccountOption {
	return func(s *AccountService) {
		if publisher != nil {
			s.events = &eventEmitter{publisher: publisher, channel: channel}
		}
	}
}

func NewAccountService(st Store, hasher PasswordHasher, tokens TokenIssuer, log logging.Logger, opts ...AccountOption) *AccountService {
	s := &AccountService{
		store:      st,
		hasher:     hasher,
		tokens:     tokens,
		log:        log,
		sessionTTL: auth.DefaultSessionTTL,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new account. Username and email must both be unused.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	salt, err := s.hasher.DeriveSalt()
	if err != nil {
		return types.User{}, err
	}

	user := types.User{
		ID:            s.newID(),
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  s.hasher.Hash(in.Password, salt),
		Salt:          salt,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Country:       in.Country,
		AboutMe:       in.AboutMe,
		DOB:           in.DOB,
		ContactNumber: in.ContactNumber,
		Role:          types.DefaultRole,
		CreatedAt:     s.now(),
	}

	var created types.User
	err = s.store.Atomic(ctx, func(ctx context.Context, repos Repositories) error {
		users := repos.Users()

		if _, err := users.GetByUsername(ctx, user.Username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("check username: %w", err)
		}

		if _, err := users.GetByEmail(ctx, user.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("check email: %w", err)
		}

		var err error
		created, err = users.Create(ctx, user)
		return err
	})
	if err != nil {
		return types.User{}, mapStoreConflict(err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID)
	s.events.emit(ctx, s.log, AccountEvent{Type: EventUserRegistered, UserID: created.ID, OccurredAt: created.CreatedAt})
	return created, nil
}

// SignIn verifies credentials and opens a new session.
func (s *AccountService) SignIn(ctx context.Context, username, password string) (types.Session, error) {
	var session types.Session
	err := s.store.Atomic(ctx, func(ctx context.Context, repos Repositories) error {
		user, err := repos.Users().GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownUser
			}
			return fmt.Errorf("lookup user: %w", err)
		}

		if !s.hasher.Verify(password, user.Salt, user.PasswordHash) {
			return ErrBadPassword
		}

		now := s.now()
		expiresAt := now.Add(s.sessionTTL)
		token, err := s.tokens.Issue(user.ID, now, expiresAt)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		session, err = repos.Sessions().Create(ctx, types.Session{
			UserID:      user.ID,
			AccessToken: token,
			LoginAt:     now,
			ExpiresAt:   expiresAt,
		})
		return err
	})
	if err != nil {
		return types.Session{}, err
	}

	s.log.Info(ctx, "user signed in", "user_id", session.UserID, "session_id", session.ID)
	s.events.emit(ctx, s.log, AccountEvent{
		Type:       EventSessionOpened,
		UserID:     session.UserID,
		SessionID:  session.ID,
		OccurredAt: session.LoginAt,
	})
	return session, nil
}

// SignOut closes the active session identified by token and returns its owner.
func (s *AccountService) SignOut(ctx context.Context, token string) (types.User, error) {
	var (
		owner     types.User
		sessionID int64
		at        time.Time
	)
	err := s.store.Atomic(ctx, func(ctx context.Context, repos Repositories) error {
		session, err := repos.Sessions().GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotSignedIn
			}
			return fmt.Errorf("lookup session: %w", err)
		}

		at = s.now()
		if !session.Active(at) {
			return ErrNotSignedIn
		}

		if err := repos.Sessions().MarkLoggedOut(ctx, session.ID, at); err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		sessionID = session.ID

		owner, err = repos.Users().GetByID(ctx, session.UserID)
		if err != nil {
			return fmt.Errorf("lookup session owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.User{}, err
	}

	s.log.Info(ctx, "user signed out", "user_id", owner.ID, "session_id", sessionID)
	s.events.emit(ctx, s.log, AccountEvent{
		Type:       EventSessionClosed,
		UserID:     owner.ID,
		SessionID:  sessionID,
		OccurredAt: at,
	})
	return owner, nil
}

// Profile returns the public profile of userID on behalf of the bearer of token.
// Any signed-in caller may read any profile.
func (s *AccountService) Profile(ctx context.Context, userID, token string) (types.Profile, error) {
	var profile types.Profile
	err := s.store.Atomic(ctx, func(ctx context.Context, repos Repositories) error {
		session, err := repos.Sessions().GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnauthorizedNotSignedIn
			}
			return fmt.Errorf("lookup session: %w", err)
		}
		if !session.Active(s.now()) {
			return ErrUnauthorizedSignedOut
		}

		user, err := repos.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lookup user: %w", err)
		}
		profile = user.Profile()
		return nil
	})
	if err != nil {
		return types.Profile{}, err
	}
	return profile, nil
}

// mapStoreConflict turns unique-constraint failures raised by a concurrent
// signup into the same errors as the explicit checks.
func mapStoreConflict(err error) error {
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		return ErrUsernameTaken
	case errors.Is(err, store.ErrEmailTaken):
		return ErrEmailTaken
	default:
		return err
	}
}
