package idempotency

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pfirestore "github.com/mirada-interiors/cms-api/internal/platform/firestore"
)

const idempotencyCollection = "idempotencyRecords"

type firestoreRecord struct {
	Key         string    `firestore:"key"`
	Fingerprint string    `firestore:"fingerprint"`
	Status      string    `firestore:"status"`
	Result      []byte    `firestore:"result,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
	ExpiresAt   time.Time `firestore:"expiresAt"`
}

// FirestoreStore persists idempotency records in a Firestore collection.
type FirestoreStore struct {
	provider *pfirestore.Provider
}

// NewFirestoreStore constructs a Firestore-backed idempotency store.
func NewFirestoreStore(provider *pfirestore.Provider) (*FirestoreStore, error) {
	if provider == nil {
		return nil, errors.New("idempotency: firestore provider is required")
	}
	return &FirestoreStore{provider: provider}, nil
}

// Reserve implements the Store interface using a transaction so that two
// concurrent requests with the same key cannot both proceed.
func (s *FirestoreStore) Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error) {
	now = now.UTC()
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client, err := s.provider.Client(ctx)
	if err != nil {
		return Reservation{}, err
	}

	ref := client.Collection(idempotencyCollection).Doc(recordID(key))
	var reservation Reservation

	err = pfirestore.RunTransaction(ctx, client, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		var stored firestoreRecord
		exists := snap != nil && snap.Exists()
		if exists {
			if err := snap.DataTo(&stored); err != nil {
				return err
			}
		}

		if !exists || (!stored.ExpiresAt.IsZero() && !now.Before(stored.ExpiresAt)) {
			fresh := firestoreRecord{
				Key:         key,
				Fingerprint: fingerprint,
				Status:      string(StatusPending),
				CreatedAt:   now,
				UpdatedAt:   now,
				ExpiresAt:   now.Add(ttl),
			}
			if err := tx.Set(ref, fresh); err != nil {
				return err
			}
			reservation = Reservation{State: ReservationStateNew, Record: toRecord(fresh)}
			return nil
		}

		if stored.Fingerprint != fingerprint {
			return ErrFingerprintMismatch
		}
		if Status(stored.Status) == StatusCompleted {
			reservation = Reservation{State: ReservationStateCompleted, Record: toRecord(stored)}
			return nil
		}
		reservation = Reservation{State: ReservationStatePending, Record: toRecord(stored)}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFingerprintMismatch) {
			return Reservation{}, ErrFingerprintMismatch
		}
		return Reservation{}, err
	}
	return reservation, nil
}

// SaveResult implements the Store interface.
func (s *FirestoreStore) SaveResult(ctx context.Context, key, fingerprint string, result []byte, now time.Time, ttl time.Duration) error {
	now = now.UTC()
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client, err := s.provider.Client(ctx)
	if err != nil {
		return err
	}

	ref := client.Collection(idempotencyCollection).Doc(recordID(key))
	record := firestoreRecord{
		Key:         key,
		Fingerprint: fingerprint,
		Status:      string(StatusCompleted),
		Result:      result,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if _, err := ref.Set(ctx, record); err != nil {
		return pfirestore.WrapError("idempotency.save", err)
	}
	return nil
}

// Release deletes the reservation so that subsequent attempts may retry.
func (s *FirestoreStore) Release(ctx context.Context, key, _ string) error {
	client, err := s.provider.Client(ctx)
	if err != nil {
		return err
	}
	if _, err := client.Collection(idempotencyCollection).Doc(recordID(key)).Delete(ctx); err != nil {
		return pfirestore.WrapError("idempotency.release", err)
	}
	return nil
}

func toRecord(stored firestoreRecord) Record {
	return Record{
		Key:         stored.Key,
		Fingerprint: stored.Fingerprint,
		Status:      Status(stored.Status),
		Result:      stored.Result,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.UpdatedAt,
		ExpiresAt:   stored.ExpiresAt,
	}
}
