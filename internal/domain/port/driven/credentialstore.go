package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by the encrypted RecordStore adapter when
// PLUXEE_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set PLUXEE_SECRET_KEY")

// RecordStore defines the driven port for the persisted tier of session
// values. Each key holds a single scalar string.
type RecordStore interface {
	// Load returns the stored value for key. Returns ("", nil) if nothing is
	// stored; a missing record is never an error.
	Load(ctx context.Context, key model.CredentialKey) (string, error)

	// Save replaces the stored value for key.
	Save(ctx context.Context, key model.CredentialKey, value string) error

	// Delete removes the record for key. Deleting a missing record is not an error.
	Delete(ctx context.Context, key model.CredentialKey) error
}
