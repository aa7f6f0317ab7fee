package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavely-app/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Reaction{},
		&models.Comment{},
	))
	return db
}

func seedGraph(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{ID: 1, Name: "alice", Email: "alice@example.com"}).Error)
	require.NoError(t, db.Create(&models.User{ID: 2, Name: "bob", Email: "bob@example.com"}).Error)
	require.NoError(t, db.Create(&models.Post{ID: 10, UserID: 2, Content: "hello"}).Error)
}

func TestFollowRoundTripWithCounters(t *testing.T) {
	db := newTestDB(t)
	seedGraph(t, db)
	repo := NewPostgresRelationRepository(db)

	err := repo.Transact(context.Background(), func(tx RelationTx) error {
		exists, err := tx.FollowExists(1, 2)
		require.NoError(t, err)
		require.False(t, exists)

		require.NoError(t, tx.CreateFollow(&models.Follow{FollowerID: 1, FollowingID: 2}))
		require.NoError(t, tx.AdjustUserCounter(1, ColumnFollowingCount, 1))
		require.NoError(t, tx.AdjustUserCounter(2, ColumnFollowerCount, 1))
		return nil
	})
	require.NoError(t, err)

	alice, err := repo.GetUser(1)
	require.NoError(t, err)
	bob, err := repo.GetUser(2)
	require.NoError(t, err)
	assert.Equal(t, 1, alice.FollowingCount)
	assert.Equal(t, 1, bob.FollowerCount)

	var rows int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows, "counter must match the physical row count")

	err = repo.Transact(context.Background(), func(tx RelationTx) error {
		require.NoError(t, tx.DeleteFollow(1, 2))
		require.NoError(t, tx.AdjustUserCounter(1, ColumnFollowingCount, -1))
		require.NoError(t, tx.AdjustUserCounter(2, ColumnFollowerCount, -1))
		return nil
	})
	require.NoError(t, err)

	alice, _ = repo.GetUser(1)
	bob, _ = repo.GetUser(2)
	assert.Equal(t, 0, alice.FollowingCount)
	assert.Equal(t, 0, bob.FollowerCount)
	require.NoError(t, db.Model(&models.Follow{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestTransactRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	seedGraph(t, db)
	repo := NewPostgresRelationRepository(db)

	boom := errors.New("boom")
	err := repo.Transact(context.Background(), func(tx RelationTx) error {
		require.NoError(t, tx.CreateFollow(&models.Follow{FollowerID: 1, FollowingID: 2}))
		require.NoError(t, tx.AdjustUserCounter(2, ColumnFollowerCount, 1))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Neither the row nor the counter change may be observable.
	exists, err := repo.FollowExists(1, 2)
	require.NoError(t, err)
	assert.False(t, exists)

	bob, err := repo.GetUser(2)
	require.NoError(t, err)
	assert.Zero(t, bob.FollowerCount)
}

func TestDeleteFollowMissingRow(t *testing.T) {
	db := newTestDB(t)
	seedGraph(t, db)
	repo := NewPostgresRelationRepository(db)

	err := repo.DeleteFollow(1, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFollowUniqueIndex(t *testing.T) {
	db := newTestDB(t)
	seedGraph(t, db)
	repo := NewPostgresRelationRepository(db)

	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: 1, FollowingID: 2}))
	err := repo.CreateFollow(&models.Follow{FollowerID: 1, FollowingID: 2})
	assert.Error(t, err, "second edge for the same ordered pair must violate the unique index")
}

func TestReactionUniqueIndexPerKind(t *testing.T) {
	db := newTestDB(t)
	seedGraph(t, db)
	repo := NewPostgresRelationRepository(db)

	require.NoError(t, repo.CreateReaction(&models.Reaction{PostID: 10, UserID: 1, Kind: models.ReactionLike}))
	// Same tuple again violates the index.
	err := repo.CreateReaction(&models.Reaction{PostID: 10, UserID: 1, Kind: models.ReactionLike})
	assert.Error(t, err)
	// A different kind from the same user is a separate row.
	require.NoError(t, repo.CreateReaction(&models.Reaction{PostID: 10, UserID: 1, Kind: models.ReactionLaugh}))

	exists, err := repo.ReactionExists(1, 10, models.ReactionLaugh)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReactionCounterParity(t *testing.T) {
	db := newTestDB(t)
	seedGraph(t, db)
	repo := NewPostgresRelationRepository(db)

	err := repo.Transact(context.Background(), func(tx RelationTx) error {
		require.NoError(t, tx.CreateReaction(&models.Reaction{PostID: 10, UserID: 1, Kind: models.ReactionLike}))
		return tx.AdjustPostCounter(10, ColumnLikeCount, 1)
	})
	require.NoError(t, err)

	post, err := repo.GetPost(10)
	require.NoError(t, err)
	assert.Equal(t, 1, post.LikeCount)
	assert.Zero(t, post.LaughCount)

	var rows int64
	require.NoError(t, db.Model(&models.Reaction{}).Where("post_id = ? AND kind = ?", 10, models.ReactionLike).Count(&rows).Error)
	assert.EqualValues(t, post.LikeCount, rows)
}

func TestCommentAppendAndCounter(t *testing.T) {
	db := newTestDB(t)
	seedGraph(t, db)
	repo := NewPostgresRelationRepository(db)

	err := repo.Transact(context.Background(), func(tx RelationTx) error {
		if err := tx.CreateComment(&models.Comment{PostID: 10, UserID: 1, Content: "first"}); err != nil {
			return err
		}
		return tx.AdjustPostCounter(10, ColumnCommentCount, 1)
	})
	require.NoError(t, err)

	post, err := repo.GetPost(10)
	require.NoError(t, err)
	assert.Equal(t, 1, post.CommentCount)

	comments, total, err := NewPostgresCommentRepository(db).GetCommentsByPostID(10, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Content)
}

func TestGetPostMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresRelationRepository(db)

	_, err := repo.GetPost(404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
