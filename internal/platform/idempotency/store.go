package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// Status represents the lifecycle state of an idempotency record.
type Status string

const (
	// DefaultTTL is the default duration that idempotency records are retained.
	DefaultTTL = 24 * time.Hour
	// StatusPending indicates a request has reserved the key but not yet stored a result.
	StatusPending Status = "pending"
	// StatusCompleted indicates the result for the key is stored and can be replayed.
	StatusCompleted Status = "completed"
)

// ReservationState describes the outcome of attempting to reserve a key.
type ReservationState int

const (
	// ReservationStateNew means the caller may proceed with the operation.
	ReservationStateNew ReservationState = iota
	// ReservationStateCompleted means a stored result should be replayed.
	ReservationStateCompleted
	// ReservationStatePending means another request is processing this key.
	ReservationStatePending
)

// Record captures the persisted outcome for an idempotency key.
type Record struct {
	Key         string
	Fingerprint string
	Status      Status
	Result      []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time
}

// Reservation is the result of reserving a key, including the stored record
// when one exists.
type Reservation struct {
	State  ReservationState
	Record Record
}

// Store persists idempotency reservations and operation results.
type Store interface {
	Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error)
	SaveResult(ctx context.Context, key, fingerprint string, result []byte, now time.Time, ttl time.Duration) error
	Release(ctx context.Context, key, fingerprint string) error
}

var (
	// ErrFingerprintMismatch is returned when a key is reused with a different request fingerprint.
	ErrFingerprintMismatch = errors.New("idempotency: key reserved for different request fingerprint")
	// ErrOperationInFlight is returned when a key is still being processed by another request.
	ErrOperationInFlight = errors.New("idempotency: operation with this key is still in flight")
)

// Fingerprint derives a stable fingerprint from the operation's identifying
// parts, so a reused key with different arguments is rejected.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(strings.TrimSpace(part)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func recordID(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(sum[:])
}
