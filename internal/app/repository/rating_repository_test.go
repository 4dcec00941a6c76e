package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRatingTest(t *testing.T) (*gorm.DB, RatingRepository, *model.User, *model.Store) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	user := seedUser(t, testDB, "Rating Submitter Person", "rater@example.com", model.RoleUser)
	store := seedStore(t, testDB, "Submitted Rating Target Store", "target@store.com", "", nil)
	return testDB, NewRatingRepository(testDB), user, store
}

func TestRatingRepository_Upsert(t *testing.T) {
	testDB, repo, user, store := setupRatingTest(t)
	defer db.CleanupTestDB(testDB)

	outcome, err := repo.Upsert(user.ID, store.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, model.RatingCreated, outcome)

	outcome, err = repo.Upsert(user.ID, store.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, model.RatingUpdated, outcome)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	rating, err := repo.FindByUserAndStore(user.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, rating.Rating)
}

func TestRatingRepository_Upsert_Concurrent(t *testing.T) {
	testDB, repo, user, store := setupRatingTest(t)
	defer db.CleanupTestDB(testDB)

	const workers = 8
	var wg sync.WaitGroup
	outcomes := make(chan model.RatingOutcome, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(value int) {
			defer wg.Done()
			outcome, err := repo.Upsert(user.ID, store.ID, value)
			if err != nil {
				errs <- err
				return
			}
			outcomes <- outcome
		}(i%5 + 1)
	}
	wg.Wait()
	close(outcomes)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	created := 0
	for o := range outcomes {
		if o == model.RatingCreated {
			created++
		}
	}
	assert.Equal(t, 1, created)

	var rows int64
	testDB.Model(&model.Rating{}).Where("user_id = ? AND store_id = ?", user.ID, store.ID).Count(&rows)
	assert.Equal(t, int64(1), rows)
}

func TestRatingRepository_Upsert_UnknownStore(t *testing.T) {
	testDB, repo, user, _ := setupRatingTest(t)
	defer db.CleanupTestDB(testDB)

	_, err := repo.Upsert(user.ID, 9999, 4)
	assert.Error(t, err)
}

func TestRatingRepository_ListForStore(t *testing.T) {
	testDB, repo, user, store := setupRatingTest(t)
	defer db.CleanupTestDB(testDB)

	second := seedUser(t, testDB, "Second Rating Submitter", "second@example.com", model.RoleUser)

	older := &model.Rating{UserID: user.ID, StoreID: store.ID, Rating: 2, CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, testDB.Create(older).Error)
	newer := &model.Rating{UserID: second.ID, StoreID: store.ID, Rating: 5, CreatedAt: time.Now()}
	require.NoError(t, testDB.Create(newer).Error)

	ratings, err := repo.ListForStore(store.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, newer.ID, ratings[0].ID)
	assert.Equal(t, "Second Rating Submitter", ratings[0].UserName)
	assert.Equal(t, "second@example.com", ratings[0].UserEmail)
	assert.Equal(t, older.ID, ratings[1].ID)

	avg, err := repo.AverageForStore(store.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 3.5, *avg, 0.001)
}

func TestRatingRepository_AverageForUnratedStore(t *testing.T) {
	testDB, repo, _, store := setupRatingTest(t)
	defer db.CleanupTestDB(testDB)

	avg, err := repo.AverageForStore(store.ID)
	require.NoError(t, err)
	assert.Nil(t, avg)

	ratings, err := repo.ListForStore(store.ID)
	require.NoError(t, err)
	assert.Empty(t, ratings)
}

func TestRatingRepository_FindByUserAndStore_NotRated(t *testing.T) {
	testDB, repo, user, store := setupRatingTest(t)
	defer db.CleanupTestDB(testDB)

	_, err := repo.FindByUserAndStore(user.ID, store.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
