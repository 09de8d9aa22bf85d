package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driven"
)

var _ driven.RecordStore = (*RecordRepo)(nil)

// RecordRepo stores session records with AES-256-GCM encrypted values.
type RecordRepo struct {
	db  *DB
	key []byte
}

// NewRecordRepo creates a RecordRepo. key must be 32 bytes; with a nil key
// every operation fails with driven.ErrEncryptionKeyNotSet.
func NewRecordRepo(db *DB, key []byte) *RecordRepo {
	return &RecordRepo{db: db, key: key}
}

// Load returns the decrypted value for key, or "" when no record exists.
func (r *RecordRepo) Load(ctx context.Context, key model.CredentialKey) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT value FROM session_records WHERE key = ?`
	var encrypted string
	err := r.db.Reader.QueryRowContext(ctx, query, string(key)).Scan(&encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load record %q: %w", key, err)
	}

	plaintext, err := r.decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt record %q: %w", key, err)
	}
	return plaintext, nil
}

// Save inserts or replaces the record for key.
func (r *RecordRepo) Save(ctx context.Context, key model.CredentialKey, value string) error {
	encrypted, err := r.encrypt(value)
	if err != nil {
		return err
	}

	const query = `INSERT INTO session_records (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.Writer.ExecContext(ctx, query, string(key), encrypted); err != nil {
		return fmt.Errorf("save record %q: %w", key, err)
	}
	return nil
}

// Delete removes the record for key. Deleting a missing record is not an error.
func (r *RecordRepo) Delete(ctx context.Context, key model.CredentialKey) error {
	const query = `DELETE FROM session_records WHERE key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, string(key)); err != nil {
		return fmt.Errorf("delete record %q: %w", key, err)
	}
	return nil
}

// encrypt returns base64(nonce || ciphertext || tag).
func (r *RecordRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (r *RecordRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}
	return string(plaintext), nil
}

func (r *RecordRepo) aead() (cipher.AEAD, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
