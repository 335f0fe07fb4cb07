package backup

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/liftlog/liftlog/internal/dates"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
	"golang.org/x/crypto/pbkdf2"
)

// Version is the payload format version written by Create.
const Version = 1

// Key derivation parameters. They must not change, or older backups
// become unreadable.
const (
	kdfSalt       = "workout-tracker-backup-salt-v1"
	kdfIterations = 100000
	keySize       = 32
	nonceSize     = 12
)

var (
	// ErrDecrypt means the password is wrong or the file was modified.
	ErrDecrypt = errors.New("incorrect password or corrupted backup file")
	// ErrInvalidBackup means the file decrypted but is not a backup.
	ErrInvalidBackup = errors.New("invalid backup file format")
)

// Source provides the data to back up.
type Source interface {
	Snapshot(ctx context.Context) (*storage.Snapshot, error)
}

// Target receives restored data, replacing everything it holds.
type Target interface {
	ReplaceAll(ctx context.Context, snap *storage.Snapshot) error
}

// payload is the plaintext of a backup file.
type payload struct {
	Version     int                 `json:"version"`
	Timestamp   time.Time           `json:"timestamp"`
	Exercises   []models.Exercise   `json:"exercises"`
	Workouts    []models.Workout    `json:"workouts"`
	WorkoutLogs []models.WorkoutLog `json:"workoutLogs"`
	Settings    []models.Settings   `json:"settings"`
}

// Create snapshots src and returns the encrypted backup.
func Create(ctx context.Context, src Source, password string) ([]byte, error) {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	return Encode(snap, password, time.Now().UTC())
}

// Encode serializes snap and encrypts it with a key derived from password.
// The result is a 12-byte nonce followed by the AES-GCM ciphertext.
func Encode(snap *storage.Snapshot, password string, at time.Time) ([]byte, error) {
	p := payload{
		Version:     Version,
		Timestamp:   at,
		Exercises:   nonNil(snap.Exercises),
		Workouts:    nonNil(snap.Workouts),
		WorkoutLogs: nonNil(snap.WorkoutLogs),
		Settings:    []models.Settings{},
	}
	if snap.Settings != nil {
		p.Settings = append(p.Settings, *snap.Settings)
	}

	plaintext, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}

	gcm, err := newGCM(password)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decode decrypts and validates a backup, returning its data and creation time.
func Decode(data []byte, password string) (*storage.Snapshot, time.Time, error) {
	if len(data) < nonceSize {
		return nil, time.Time{}, ErrDecrypt
	}
	gcm, err := newGCM(password)
	if err != nil {
		return nil, time.Time{}, err
	}
	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, time.Time{}, ErrDecrypt
	}

	var p payload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if p.Version == 0 || p.Exercises == nil || p.Workouts == nil {
		return nil, time.Time{}, ErrInvalidBackup
	}

	snap := &storage.Snapshot{
		Exercises:   p.Exercises,
		Workouts:    p.Workouts,
		WorkoutLogs: p.WorkoutLogs,
	}
	if len(p.Settings) > 0 {
		s := p.Settings[0]
		snap.Settings = &s
	}
	return snap, p.Timestamp, nil
}

// Restore decrypts data and replaces everything in dst with it. Nothing is
// changed if decryption or validation fails.
func Restore(ctx context.Context, dst Target, data []byte, password string) error {
	snap, _, err := Decode(data, password)
	if err != nil {
		return err
	}
	if err := dst.ReplaceAll(ctx, snap); err != nil {
		return fmt.Errorf("restoring backup: %w", err)
	}
	return nil
}

// FileName returns the backup file name for a given day.
func FileName(at time.Time) string {
	return "liftlog-" + dates.Format(at) + ".backup"
}

// WriteFile writes data to dir under the name for at, creating dir if
// needed, and returns the file path.
func WriteFile(dir string, data []byte, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(at))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return path, nil
}

func newGCM(password string) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), []byte(kdfSalt), kdfIterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
