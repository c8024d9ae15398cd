package repository

import (
	"context"
	"testing"

	"lambolotto/domain/entities"
	"lambolotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCode(t *testing.T, repo *DailyCodeRepository, code string, maxRedemptions int) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &entities.DailyCode{
		Code:           code,
		IsActive:       true,
		MaxRedemptions: maxRedemptions,
	}))
}

func TestDailyCodeRepository_GetActiveByCode(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewDailyCodeRepository(testDB.DB)
	ctx := context.Background()

	createCode(t, repo, "LAMBO", 3)

	t.Run("known code", func(t *testing.T) {
		code, err := repo.GetActiveByCode(ctx, "LAMBO")
		require.NoError(t, err)
		require.NotNil(t, code)
		assert.Equal(t, 3, code.MaxRedemptions)
	})

	t.Run("unknown code yields nil", func(t *testing.T) {
		code, err := repo.GetActiveByCode(ctx, "NOPE")
		require.NoError(t, err)
		assert.Nil(t, code)
	})
}

func TestDailyCodeRepository_Usages(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewDailyCodeRepository(testDB.DB)
	ctx := context.Background()

	createCode(t, repo, "LAMBO", 3)

	t.Run("no usage before redemption", func(t *testing.T) {
		used, err := repo.HasUsage(ctx, 42, "LAMBO")
		require.NoError(t, err)
		assert.False(t, used)

		today, err := repo.HasUsageToday(ctx, 42)
		require.NoError(t, err)
		assert.False(t, today)
	})

	t.Run("record usage", func(t *testing.T) {
		require.NoError(t, repo.RecordUsage(ctx, 42, "LAMBO"))

		used, err := repo.HasUsage(ctx, 42, "LAMBO")
		require.NoError(t, err)
		assert.True(t, used)

		today, err := repo.HasUsageToday(ctx, 42)
		require.NoError(t, err)
		assert.True(t, today)
	})

	t.Run("same player twice rejected", func(t *testing.T) {
		err := repo.RecordUsage(ctx, 42, "LAMBO")
		assert.ErrorIs(t, err, entities.ErrAlreadyUsedThisCode)
	})

	t.Run("distinct user count", func(t *testing.T) {
		require.NoError(t, repo.RecordUsage(ctx, 43, "LAMBO"))

		count, err := repo.CountDistinctUsers(ctx, "LAMBO")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestNotificationTokenRepository_Save(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	repo := NewNotificationTokenRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no subscription initially", func(t *testing.T) {
		has, err := repo.HasSubscription(ctx, 42)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("save and re-save upserts", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, &entities.NotificationToken{
			PlayerFid: 42,
			Token:     "tok-1",
			URL:       "https://push.example.com/send",
		}))
		require.NoError(t, repo.Save(ctx, &entities.NotificationToken{
			PlayerFid: 42,
			Token:     "tok-2",
			URL:       "https://push.example.com/send",
		}))

		has, err := repo.HasSubscription(ctx, 42)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("delete removes the gate", func(t *testing.T) {
		require.NoError(t, repo.DeleteByFid(ctx, 42))

		has, err := repo.HasSubscription(ctx, 42)
		require.NoError(t, err)
		assert.False(t, has)
	})
}
