package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/equipment"
	"Plant3D/internal/review"
)

func TestConnString(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db/plant":                    "postgres://u:p@db/plant?sslmode=require",
		"postgres://u:p@db/plant?connect_timeout=5":  "postgres://u:p@db/plant?connect_timeout=5&sslmode=require",
		"user=postgres dbname=plant":                 "user=postgres dbname=plant sslmode=require",
		"user=postgres dbname=plant sslmode=disable": "user=postgres dbname=plant sslmode=disable",
	}
	for in, want := range cases {
		assert.Equal(t, want, connString(in), in)
	}
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.CreateUser(ctx, "ivan", "ivan@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = m.CreateUser(ctx, "ivan", "other@example.com", "hash2")
	assert.ErrorIs(t, err, ErrLoginTaken)

	got, hash, err := m.GetBylogin(ctx, "ivan")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, "hash", hash)

	got, hash, err = m.GetBylogin(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Empty(t, hash)
}

func TestMemoryReviews(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	clock := clockwork.NewFakeClock()

	first := review.New(1, "a.pdf", equipment.Parameters{}, equipment.DefaultFallbacks(), clock)
	clock.Advance(time.Minute)
	second := review.New(1, "b.pdf", equipment.Parameters{}, equipment.DefaultFallbacks(), clock)
	other := review.New(2, "c.pdf", equipment.Parameters{}, equipment.DefaultFallbacks(), clock)
	for _, r := range []review.Review{first, second, other} {
		require.NoError(t, m.CreateReview(ctx, r))
	}

	list, err := m.ListReviews(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b.pdf", list[0].Source)

	updated := first.Override(equipment.Parameters{FlowRate: equipment.Float(700)}, equipment.DefaultFallbacks(), clock)
	require.NoError(t, m.UpdateReview(ctx, updated))
	got, err := m.GetReview(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 700.0, got.Baseline.FlowRate)

	_, err = m.GetReview(ctx, uuid.New())
	assert.ErrorIs(t, err, review.ErrNotFound)
	assert.ErrorIs(t, m.UpdateReview(ctx, review.Review{ID: uuid.New()}), review.ErrNotFound)
}
