package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id, username string) *Record {
	return &Record{
		ID:           id,
		Username:     username,
		PasswordHash: "hash",
		Role:         DefaultRole,
	}
}

func TestMemoryStoreSaveAndFind(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testRecord("id-1", "alice_01")))

	byName, err := s.FindByUsername(ctx, "alice_01")
	require.NoError(t, err)
	assert.Equal(t, "id-1", byName.ID)

	byID, err := s.FindByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "alice_01", byID.Username)

	exists, err := s.Exists(ctx, "alice_01")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDuplicateUsername(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testRecord("id-1", "alice_01")))

	err := s.Save(ctx, testRecord("id-2", "alice_01"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// The original record is untouched.
	rec, err := s.FindByUsername(ctx, "alice_01")
	require.NoError(t, err)
	assert.Equal(t, "id-1", rec.ID)
}

func TestMemoryStoreReturnsClones(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testRecord("id-1", "alice_01")))

	rec, err := s.FindByID(ctx, "id-1")
	require.NoError(t, err)
	rec.Username = "mutated"

	again, err := s.FindByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "alice_01", again.Username)
}

func TestMemoryStoreRotateRefreshTokenCAS(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, s.Save(ctx, testRecord("id-1", "alice_01")))

	// No token stored yet: rotation cannot match.
	err := s.RotateRefreshToken(ctx, "id-1", "old", "new", expiry)
	assert.ErrorIs(t, err, ErrRefreshTokenMismatch)

	require.NoError(t, s.SaveRefreshToken(ctx, "id-1", "old", expiry))

	// Wrong current value is rejected.
	err = s.RotateRefreshToken(ctx, "id-1", "not-old", "new", expiry)
	assert.ErrorIs(t, err, ErrRefreshTokenMismatch)

	// Matching current value swaps.
	require.NoError(t, s.RotateRefreshToken(ctx, "id-1", "old", "new", expiry))

	rec, err := s.FindByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "new", rec.RefreshToken)

	// A second rotation with the dead token fails.
	err = s.RotateRefreshToken(ctx, "id-1", "old", "newer", expiry)
	assert.ErrorIs(t, err, ErrRefreshTokenMismatch)

	err = s.RotateRefreshToken(ctx, "ghost", "new", "newer", expiry)
	assert.ErrorIs(t, err, ErrNotFound)
}
