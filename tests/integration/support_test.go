//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comic-con-museum/fan-forge/internal/domain"
	"github.com/comic-con-museum/fan-forge/internal/repository"
)

func TestPgSupportRepository_Integration(t *testing.T) {
	cleanTable(t, "exhibits")
	ctx := context.Background()
	exhibits := repository.NewPgExhibitRepository(testPool)
	supports := repository.NewPgSupportRepository(testPool)

	newExhibit := func(t *testing.T, title string) int64 {
		t.Helper()
		exhibit := &domain.Exhibit{
			Title:       title,
			Description: "d",
			Author:      "alice",
			Tags:        []string{},
		}
		require.NoError(t, exhibits.Create(ctx, exhibit))
		return exhibit.ID
	}

	t.Run("support then unsupport toggles", func(t *testing.T) {
		id := newExhibit(t, "toggle target")

		created, err := supports.Support(ctx, id, "bob", nil)
		require.NoError(t, err)
		assert.True(t, created)

		// A second toggle on is a no-op, not an error.
		created, err = supports.Support(ctx, id, "bob", nil)
		require.NoError(t, err)
		assert.False(t, created)

		count, err := supports.CountForExhibit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		removed, err := supports.Unsupport(ctx, id, "bob")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = supports.Unsupport(ctx, id, "bob")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("concurrent supports create exactly one row", func(t *testing.T) {
		id := newExhibit(t, "race target")

		const racers = 16
		results := make([]bool, racers)
		errs := make([]error, racers)

		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = supports.Support(ctx, id, "carol", nil)
			}(i)
		}
		wg.Wait()

		winners := 0
		for i := 0; i < racers; i++ {
			require.NoError(t, errs[i])
			if results[i] {
				winners++
			}
		}
		assert.Equal(t, 1, winners, "exactly one racer may create the support")

		count, err := supports.CountForExhibit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("survey is stored with the support", func(t *testing.T) {
		id := newExhibit(t, "survey target")

		survey := &domain.Survey{
			Visits:      3,
			Rating:      8,
			Populations: map[string]bool{"teens": true, "families": false},
		}
		created, err := supports.Support(ctx, id, "dave", survey)
		require.NoError(t, err)
		require.True(t, created)

		var visits, rating int
		err = testPool.QueryRow(ctx,
			"SELECT visits, rating FROM supports WHERE exhibit = $1 AND supporter = $2",
			id, "dave",
		).Scan(&visits, &rating)
		require.NoError(t, err)
		assert.Equal(t, 3, visits)
		assert.Equal(t, 8, rating)
	})

	t.Run("supporting a missing exhibit reports not found", func(t *testing.T) {
		_, err := supports.Support(ctx, 999999, "bob", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("IsSupporting distinguishes anonymous from unsupporting", func(t *testing.T) {
		id := newExhibit(t, "tri-state target")

		flag, err := supports.IsSupporting(ctx, nil, id)
		require.NoError(t, err)
		assert.Nil(t, flag, "anonymous viewers get no answer")

		flag, err = supports.IsSupporting(ctx, &domain.User{ID: "bob"}, id)
		require.NoError(t, err)
		require.NotNil(t, flag)
		assert.False(t, *flag)

		_, err = supports.Support(ctx, id, "bob", nil)
		require.NoError(t, err)

		flag, err = supports.IsSupporting(ctx, &domain.User{ID: "bob"}, id)
		require.NoError(t, err)
		require.NotNil(t, flag)
		assert.True(t, *flag)
	})
}
