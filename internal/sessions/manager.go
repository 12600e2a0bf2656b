package sessions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gramctl-io/gramctl/internal/models"
	"github.com/gramctl-io/gramctl/internal/retry"
)

// Limits applied to the list operations. Values above the maximum are
// capped; the platform's search endpoint serves a single page and the
// feed is paged internally up to MaxFeedLimit entries.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
	DefaultFeedLimit   = 20
	MaxFeedLimit       = 100
)

// Manager is the sole owner of the authenticated handle. Every feature
// operation gates on ensureAuthenticated and routes its remote calls
// through the retry policy and the outbound throttle. A mutex serializes
// use of the single in-memory handle.
type Manager struct {
	lock     sync.Mutex
	store    *Store
	remote   RemoteAccount
	policy   retry.Policy
	throttle *retry.Throttle

	handle  RemoteSession
	session models.Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithPolicy overrides the default retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithThrottle paces outbound calls with the given token bucket. A nil
// throttle disables pacing.
func WithThrottle(t *retry.Throttle) Option {
	return func(m *Manager) { m.throttle = t }
}

// NewManager wires a manager over the given store and remote boundary.
func NewManager(store *Store, remote RemoteAccount, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		remote: remote,
		policy: retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login establishes an authenticated session. When a usable session
// already exists, in memory or on disk, login is a no-op success.
// Otherwise the remote authentication runs under the retry policy; on
// success the session envelope is persisted synchronously before Login
// returns, so a crash after a reported success still leaves a usable
// session on disk. A credential rejection never touches an existing
// stored session.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.handle != nil {
		logrus.WithField("username", m.session.Username).
			Debugln("Already logged in, skipping authentication")
		return nil
	}

	stored, err := m.store.Load()
	if err == nil && !stored.IsZero() {
		logrus.WithField("username", stored.Username).
			Debugln("Stored session found, skipping authentication")
		return nil
	}

	handle, err := retry.DoValue(ctx, m.policy, "login",
		func(ctx context.Context) (RemoteSession, error) {
			if err := m.throttle.Wait(ctx); err != nil {
				return nil, err
			}
			return m.remote.Authenticate(ctx, username, password)
		})
	if err != nil {
		return m.loginError(err)
	}

	state, err := handle.Export()
	if err != nil {
		return fmt.Errorf("failed to export session state: %w", err)
	}

	session := models.NewSession(handle.Username(), state)
	if err := m.store.Save(session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.handle = handle
	m.session = session

	return nil
}

// loginError converts boundary classifications from the authentication
// call into the login-specific error surface.
func (m *Manager) loginError(err error) error {
	var classified *models.ClassifiedError
	if !errors.As(err, &classified) {
		return err
	}

	switch classified.Class {
	case models.ClassAuthExpired:
		// Authentication rejecting credentials classifies like a stale
		// session; at login time that means the password was wrong.
		return ErrInvalidCredentials
	case models.ClassChallengeRequired:
		return &ChallengeError{Guidance: classified.Message}
	default:
		return err
	}
}

// Logout drops the in-memory handle and removes the stored session.
// Idempotent; logging out when not logged in is a success.
func (m *Manager) Logout() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.handle = nil
	m.session = models.Session{}

	return m.store.Clear()
}

// Username returns the owner of the current session, or "" when no
// session is loaded.
func (m *Manager) Username() string {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.handle == nil {
		return ""
	}
	return m.session.Username
}

// SessionInfo returns a copy of the persisted envelope, preferring the
// in-memory one when loaded. The bool reports presence.
func (m *Manager) SessionInfo() (models.Session, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.handle != nil {
		return m.session, true
	}

	stored, err := m.store.Load()
	if err != nil || stored.IsZero() {
		return models.Session{}, false
	}
	return stored, true
}

// ensureAuthenticated is the gate every feature operation passes. It
// returns the in-memory handle, resuming it from the stored envelope
// when the process has just started. Absence of any session fails with
// ErrNotLoggedIn; a platform rejection of the stored state clears it
// and fails with ErrSessionExpired.
func (m *Manager) ensureAuthenticated(ctx context.Context) (RemoteSession, error) {
	if m.handle != nil {
		return m.handle, nil
	}

	stored, err := m.store.Load()
	if err != nil || stored.IsZero() {
		return nil, ErrNotLoggedIn
	}

	state, err := stored.DecodeState()
	if err != nil {
		// Undecodable state is as good as absent.
		logrus.WithError(err).Debugln("Stored session state undecodable, clearing")
		m.store.Clear()
		return nil, ErrNotLoggedIn
	}

	handle, err := retry.DoValue(ctx, m.policy, "resume",
		func(ctx context.Context) (RemoteSession, error) {
			if err := m.throttle.Wait(ctx); err != nil {
				return nil, err
			}
			return m.remote.Resume(ctx, state)
		})
	if err != nil {
		if models.ClassificationOf(err) == models.ClassAuthExpired {
			return nil, m.expireSession()
		}
		return nil, err
	}

	stored.Touch()
	m.handle = handle
	m.session = stored

	return handle, nil
}

// expireSession discards the in-memory handle and the stored copy, then
// reports the expiry so the caller can prompt a re-login.
func (m *Manager) expireSession() error {
	logrus.WithField("username", m.session.Username).
		Debugln("Session rejected by platform, clearing stored copy")

	m.handle = nil
	m.session = models.Session{}

	if err := m.store.Clear(); err != nil {
		logrus.WithError(err).Errorln("Failed to clear expired session")
	}

	return ErrSessionExpired
}

// call gates on authentication, paces the request through the throttle
// and runs it under the retry policy. An AuthExpired surviving the
// policy invalidates the session before the error is surfaced.
func call[T any](ctx context.Context, m *Manager, op string, fn func(context.Context, RemoteSession) (T, error)) (T, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	var zero T

	handle, err := m.ensureAuthenticated(ctx)
	if err != nil {
		return zero, err
	}

	out, err := retry.DoValue(ctx, m.policy, op,
		func(ctx context.Context) (T, error) {
			if err := m.throttle.Wait(ctx); err != nil {
				return zero, err
			}
			return fn(ctx, handle)
		})
	if err != nil {
		if models.ClassificationOf(err) == models.ClassAuthExpired {
			return zero, m.expireSession()
		}
		return zero, err
	}

	return out, nil
}

// Stats returns the headline counters for the authenticated account.
func (m *Manager) Stats(ctx context.Context) (models.AccountStats, error) {
	return call(ctx, m, "stats", func(ctx context.Context, handle RemoteSession) (models.AccountStats, error) {
		return handle.AccountStats(ctx)
	})
}

// Profile looks up the public record for any account. A leading @ on
// the username is accepted and stripped.
func (m *Manager) Profile(ctx context.Context, username string) (models.Profile, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if len(username) == 0 {
		return models.Profile{}, models.NewFatal(nil, "username is required")
	}

	return call(ctx, m, "profile", func(ctx context.Context, handle RemoteSession) (models.Profile, error) {
		return handle.Profile(ctx, username)
	})
}

// Whoami returns the profile of the session owner.
func (m *Manager) Whoami(ctx context.Context) (models.Profile, error) {
	return call(ctx, m, "whoami", func(ctx context.Context, handle RemoteSession) (models.Profile, error) {
		return handle.Profile(ctx, handle.Username())
	})
}

// Search finds accounts matching the query. A non-positive limit clamps
// to DefaultSearchLimit; the platform search endpoint serves one page,
// so limits above MaxSearchLimit are capped rather than paged.
func (m *Manager) Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return nil, models.NewFatal(nil, "search query is required")
	}
	limit = clampLimit(limit, DefaultSearchLimit, MaxSearchLimit)

	return call(ctx, m, "search", func(ctx context.Context, handle RemoteSession) ([]models.UserSummary, error) {
		return handle.SearchUsers(ctx, query, limit)
	})
}

// Feed lists the most recent entries of the home timeline. A
// non-positive limit clamps to DefaultFeedLimit; pagination past the
// first page happens inside the boundary, bounded by MaxFeedLimit.
func (m *Manager) Feed(ctx context.Context, limit int) ([]models.PostSummary, error) {
	limit = clampLimit(limit, DefaultFeedLimit, MaxFeedLimit)

	return call(ctx, m, "feed", func(ctx context.Context, handle RemoteSession) ([]models.PostSummary, error) {
		return handle.Feed(ctx, limit)
	})
}

// Post publishes a photo with an optional caption. The file must exist
// and carry a .jpg, .jpeg or .png extension; both are checked before
// any network traffic.
func (m *Manager) Post(ctx context.Context, filePath, caption string) (models.PostConfirmation, error) {
	if err := validatePhoto(filePath); err != nil {
		return models.PostConfirmation{}, err
	}

	return call(ctx, m, "post", func(ctx context.Context, handle RemoteSession) (models.PostConfirmation, error) {
		return handle.UploadPhoto(ctx, filePath, caption)
	})
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func validatePhoto(filePath string) error {
	if len(filePath) == 0 {
		return models.NewFatal(nil, "photo path is required")
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return models.NewFatal(nil, "unsupported photo format %q, use .jpg, .jpeg or .png", filepath.Ext(filePath))
	}

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewFatal(err, "photo not found: %s", filePath)
		}
		return models.NewFatal(err, "cannot read photo: %s", filePath)
	}
	if info.IsDir() {
		return models.NewFatal(nil, "photo path is a directory: %s", filePath)
	}

	return nil
}
