package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
)

type msgEnv struct {
	db    *gorm.DB
	users UserService
	msgs  MessageService
}

func newMsgEnv(t *testing.T) *msgEnv {
	db := setupTestDB(t)
	return &msgEnv{
		db:    db,
		users: NewUserService(repository.NewUserRepository(db)),
		msgs:  NewMessageService(db, repository.NewMessageRepository(db), repository.NewLikeRepository(db)),
	}
}

func TestPostWritesMessageAndOutbox(t *testing.T) {
	env := newMsgEnv(t)
	ctx := context.Background()

	u1, err := env.users.Signup(ctx, "u1", "u1@email.com", "password", "")
	require.NoError(t, err)

	m, err := env.msgs.Post(ctx, u1.ID, "Hello")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, m.UserID)

	got, err := env.msgs.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Text)

	var out model.Outbox
	require.NoError(t, env.db.Where("message_id = ?", m.ID).First(&out).Error)
	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, u1.ID, out.AuthorID)
}

func TestPostEmptyText(t *testing.T) {
	env := newMsgEnv(t)

	_, err := env.msgs.Post(context.Background(), "u1", "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestDeleteByOwner(t *testing.T) {
	env := newMsgEnv(t)
	ctx := context.Background()

	u1, err := env.users.Signup(ctx, "u1", "u1@email.com", "password", "")
	require.NoError(t, err)
	m, err := env.msgs.Post(ctx, u1.ID, "Hello")
	require.NoError(t, err)
	require.NoError(t, env.msgs.Like(ctx, u1.ID, m.ID))

	require.NoError(t, env.msgs.Delete(ctx, u1.ID, m.ID))

	_, err = env.msgs.Get(ctx, m.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 点赞与外发记录一并清理
	var likeCnt, outCnt int64
	env.db.Model(&model.Like{}).Where("message_id = ?", m.ID).Count(&likeCnt)
	env.db.Model(&model.Outbox{}).Where("message_id = ?", m.ID).Count(&outCnt)
	assert.Zero(t, likeCnt)
	assert.Zero(t, outCnt)
}

func TestDeleteNotOwner(t *testing.T) {
	env := newMsgEnv(t)
	ctx := context.Background()

	u1, err := env.users.Signup(ctx, "u1", "u1@email.com", "password", "")
	require.NoError(t, err)
	u2, err := env.users.Signup(ctx, "u2", "u2@email.com", "password", "")
	require.NoError(t, err)
	m, err := env.msgs.Post(ctx, u2.ID, "m2-text")
	require.NoError(t, err)

	err = env.msgs.Delete(ctx, u1.ID, m.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	// 消息仍在
	_, err = env.msgs.Get(ctx, m.ID)
	assert.NoError(t, err)
}

func TestDeleteMissingMessage(t *testing.T) {
	env := newMsgEnv(t)

	err := env.msgs.Delete(context.Background(), "u1", "no-such-id")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLikeAndUnlike(t *testing.T) {
	env := newMsgEnv(t)
	ctx := context.Background()

	u1, err := env.users.Signup(ctx, "u1", "u1@email.com", "password", "")
	require.NoError(t, err)
	m, err := env.msgs.Post(ctx, u1.ID, "Hello")
	require.NoError(t, err)

	// 自己的消息也可以点赞
	require.NoError(t, env.msgs.Like(ctx, u1.ID, m.ID))

	liked, err := env.msgs.HasLiked(ctx, u1.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, env.msgs.Unlike(ctx, u1.ID, m.ID))

	liked, err = env.msgs.HasLiked(ctx, u1.ID, m.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeMissingMessage(t *testing.T) {
	env := newMsgEnv(t)

	err := env.msgs.Like(context.Background(), "u1", "no-such-id")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
