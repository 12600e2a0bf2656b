package sessions

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gramctl-io/gramctl/internal/common"
	"github.com/gramctl-io/gramctl/internal/models"
)

// DefaultStorePath is where the session envelope lives unless the
// session.path config key or GRAMCTL_SESSION_FILE overrides it.
const DefaultStorePath = "~/.config/gramctl/session.yaml"

// Store persists exactly one session envelope at a fixed path. It talks
// to the filesystem only; no network.
type Store struct {
	path string
}

// NewStore creates a store over the given path. An empty path selects
// the default location. A leading ~ expands to the user's home.
func NewStore(path string) *Store {
	if len(path) == 0 {
		path = DefaultStorePath
	}
	return &Store{path: common.ExpandPath(path)}
}

// Path returns the resolved location of the session file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored session. A missing file, an unreadable file,
// corrupt YAML or an envelope missing its owner or credential blob all
// come back as the zero session with a nil error: corruption must only
// force a fresh login, never crash startup.
func (s *Store) Load() (models.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).WithField("path", s.path).
				Debugln("Session file unreadable, treating as absent")
		}
		return models.Session{}, nil
	}

	var session models.Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		logrus.WithError(err).WithField("path", s.path).
			Debugln("Session file corrupt, treating as absent")
		return models.Session{}, nil
	}

	if session.IsZero() {
		return models.Session{}, nil
	}

	return session, nil
}

// Save writes the session atomically: serialize to a temp file in the
// destination directory, chmod 0600, fsync, then rename over the final
// path. A crash mid-write leaves either the old file or the new one,
// never a partial blob. Write failures propagate to the caller.
func (s *Store) Save(session models.Session) error {
	if session.IsZero() {
		return fmt.Errorf("refusing to persist an empty session")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	// Only the owner may read the credential blob.
	if err := tmp.Chmod(0o600); err != nil {
		return cleanup(fmt.Errorf("failed to restrict session file permissions: %w", err))
	}
	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("failed to write session file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("failed to sync session file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return cleanup(fmt.Errorf("failed to close session file: %w", err))
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"path":     s.path,
		"username": session.Username,
	}).Debugln("Session persisted")

	return nil
}

// Clear removes the stored session. Clearing an absent session is a
// success; the operation is idempotent.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
