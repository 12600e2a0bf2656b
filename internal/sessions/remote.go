package sessions

import (
	"context"

	"github.com/gramctl-io/gramctl/internal/models"
)

// RemoteAccount is the platform boundary the manager consumes. Both
// methods return a *models.ClassifiedError on failure; no raw platform
// error crosses this interface.
type RemoteAccount interface {
	// Authenticate performs a fresh credential login.
	Authenticate(ctx context.Context, username, password string) (RemoteSession, error)

	// Resume materializes a handle from a previously exported state blob
	// without re-sending credentials.
	Resume(ctx context.Context, state []byte) (RemoteSession, error)
}

// RemoteSession is the authenticated handle for one platform account.
// All feature calls go through it; the manager serializes access.
type RemoteSession interface {
	// Username is the account owning this handle.
	Username() string

	// Export serializes the handle into an opaque blob that Resume can
	// restore. The manager persists it without inspecting it.
	Export() ([]byte, error)

	AccountStats(ctx context.Context) (models.AccountStats, error)
	Profile(ctx context.Context, username string) (models.Profile, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
	Feed(ctx context.Context, limit int) ([]models.PostSummary, error)
	UploadPhoto(ctx context.Context, path, caption string) (models.PostConfirmation, error)
}
