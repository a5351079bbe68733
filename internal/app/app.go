package app

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"mailroom/internal/util"
	"mailroom/pkg/auth"
	"mailroom/pkg/domain"
	"mailroom/pkg/events"
	"mailroom/pkg/queue"
	"mailroom/pkg/storage"
	"mailroom/pkg/store"
)

// MetadataQueue enqueues background metadata-extraction jobs for songs.
// *queue.RedisJobQueue satisfies it.
type MetadataQueue interface {
	Enqueue(ctx context.Context, songID, objectKey string) (queue.JobStatus, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	JWTSecret     string

	Store     store.Store
	Sessions  store.SessionStore
	Objects   storage.ObjectStore
	Queue     MetadataQueue
	Publisher events.Publisher
}

// App is the core application service wiring together storage and domain logic.
type App struct {
	store     store.Store
	sessions  store.SessionStore
	objects   storage.ObjectStore
	queue     MetadataQueue
	publisher events.Publisher
}

// New constructs the application. Store, session store, and object store are
// required; the metadata queue and event publisher are optional (metadata is
// then extracted inline and events are dropped).
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required (no in-memory store allowed)")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.JWTSecret != "":
			sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		case cfg.RedisAddr != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			return nil, fmt.Errorf("session store required (jwtSecret or redisAddr)")
		}
	}

	if cfg.Objects == nil {
		return nil, fmt.Errorf("object store required")
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &App{
		store:     dataStore,
		sessions:  sessionStore,
		objects:   cfg.Objects,
		queue:     cfg.Queue,
		publisher: publisher,
	}, nil
}

// SignUp registers a new user and issues a session token.
func (a *App) SignUp(email, username, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, "", fmt.Errorf("valid email required: %w", domain.ErrValidation)
	}
	if username == "" {
		username = email[:strings.Index(email, "@")]
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", fmt.Errorf("%v: %w", err, domain.ErrValidation)
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Logout removes a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}
