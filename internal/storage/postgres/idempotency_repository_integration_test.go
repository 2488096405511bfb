package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestIdempotencyRepository_PostgresCreateGetAndMarkDone(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)

	ttl := time.Now().UTC().Add(2 * time.Hour).Round(time.Second)

	created, err := repo.CreateProcessing("idem-key-done", "req-hash-1", ttl)
	require.NoError(t, err)
	require.Equal(t, domain.IdempotencyStatusProcessing, created.Status)

	require.NoError(t, repo.MarkDone("idem-key-done", []byte(`{"id":"order-1"}`), 201))

	got, err := repo.Get("idem-key-done")
	require.NoError(t, err)
	require.Equal(t, "req-hash-1", got.RequestHash)
	require.Equal(t, domain.IdempotencyStatusDone, got.Status)
	require.Equal(t, 201, got.HTTPStatus)
	require.JSONEq(t, `{"id":"order-1"}`, string(got.ResponseBody))
}

func TestIdempotencyRepository_PostgresConflictAndHashMismatch(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)

	ttl := time.Now().UTC().Add(time.Hour)
	_, err := repo.CreateProcessing("idem-key-conflict", "req-hash-a", ttl)
	require.NoError(t, err)

	existing, err := repo.CreateProcessing("idem-key-conflict", "req-hash-a", ttl)
	require.True(t, errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists))
	require.Equal(t, "req-hash-a", existing.RequestHash)

	_, err = repo.CreateProcessing("idem-key-conflict", "req-hash-b", ttl)
	require.True(t, errors.Is(err, domain.ErrIdempotencyHashMismatch))
}

func TestIdempotencyRepository_PostgresDeleteExpired(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewIdempotencyRepository(store)

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	_, err := repo.CreateProcessing("idem-old", "h", past)
	require.NoError(t, err)
	_, err = repo.CreateProcessing("idem-fresh", "h", future)
	require.NoError(t, err)

	deleted, err := repo.DeleteExpired(time.Now().UTC(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	_, err = repo.Get("idem-fresh")
	require.NoError(t, err)

	_, err = repo.Get("idem-old")
	require.True(t, errors.Is(err, domain.ErrIdempotencyKeyNotFound))
}
