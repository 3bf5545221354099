package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/warbler/internal/model"
)

func feedTexts(items []FeedItem) []string {
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	return texts
}

func TestListByAuthor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")
	seedMessage(t, db, u1.ID, "m1-text")
	seedMessage(t, db, u2.ID, "m2-text")

	items, err := repo.ListByAuthor(ctx, u1.ID, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m1-text", items[0].Text)
	assert.Equal(t, "u1", items[0].Username)

	cnt, err := repo.CountByAuthor(ctx, u1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cnt)
}

func TestNewUserHasNoMessages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")

	cnt, err := repo.CountByAuthor(ctx, u1.ID)
	require.NoError(t, err)
	assert.Zero(t, cnt)
}

func TestListLikedBy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")
	seedMessage(t, db, u1.ID, "m1-text")
	m2 := seedMessage(t, db, u2.ID, "m2-text")

	require.NoError(t, likes.Create(ctx, u1.ID, m2.ID))

	items, err := repo.ListLikedBy(ctx, u1.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2-text"}, feedTexts(items))
}

func TestListHomeMergesOwnAndInbox(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	u2 := seedUser(t, db, "u2")
	u3 := seedUser(t, db, "u3")
	seedMessage(t, db, u1.ID, "m1-text")
	m2 := seedMessage(t, db, u2.ID, "m2-text")
	seedMessage(t, db, u3.ID, "m3-text")

	// u2 的消息已投递到 u1 的 inbox；u3 的没有
	require.NoError(t, db.Create(&model.Inbox{
		ID: uuid.New().String(), UserID: u1.ID, MessageID: m2.ID, Score: time.Now().UnixNano(),
	}).Error)

	items, err := repo.ListHome(ctx, u1.ID, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"m1-text", "m2-text"}, feedTexts(items))
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")

	old := &model.Message{ID: uuid.New().String(), UserID: u1.ID, Text: "old", CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(old).Error)
	seedMessage(t, db, u1.ID, "new")

	items, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, feedTexts(items))
}

func TestMessageDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	u1 := seedUser(t, db, "u1")
	m1 := seedMessage(t, db, u1.ID, "m1-text")

	require.NoError(t, repo.Delete(ctx, m1.ID))

	_, err := repo.GetByID(ctx, m1.ID)
	assert.Error(t, err)
}
