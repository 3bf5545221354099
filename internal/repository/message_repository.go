package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/model"
)

// FeedItem 时间线条目（消息 + 作者快照）
type FeedItem struct {
	MessageID string    `json:"message_id"`
	AuthorID  string    `json:"author_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	Delete(ctx context.Context, id string) error
	CountByAuthor(ctx context.Context, userID string) (int64, error)
	ListByAuthor(ctx context.Context, userID string, limit int) ([]FeedItem, error)
	ListLikedBy(ctx context.Context, userID string, limit int) ([]FeedItem, error)
	ListHome(ctx context.Context, userID string, limit int) ([]FeedItem, error)
	ListRecent(ctx context.Context, limit int) ([]FeedItem, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository { return &messageRepository{db: db} }

func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	var m model.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Message{}).Error
}

func (r *messageRepository) CountByAuthor(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("user_id = ?", userID).
		Count(&cnt).Error
	return cnt, err
}

func (r *messageRepository) ListByAuthor(ctx context.Context, userID string, limit int) ([]FeedItem, error) {
	var rows []FeedItem
	err := r.feedQuery(ctx).
		Where("messages.user_id = ?", userID).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *messageRepository) ListLikedBy(ctx context.Context, userID string, limit int) ([]FeedItem, error) {
	var rows []FeedItem
	err := r.feedQuery(ctx).
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ListHome 自己的消息 + 已投递到 inbox 的关注消息
func (r *messageRepository) ListHome(ctx context.Context, userID string, limit int) ([]FeedItem, error) {
	var rows []FeedItem
	err := r.feedQuery(ctx).
		Where("messages.user_id = ? OR messages.id IN (?)",
			userID,
			r.db.Table("inbox").Select("message_id").Where("user_id = ?", userID),
		).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *messageRepository) ListRecent(ctx context.Context, limit int) ([]FeedItem, error) {
	var rows []FeedItem
	err := r.feedQuery(ctx).Limit(limit).Scan(&rows).Error
	return rows, err
}

func (r *messageRepository) feedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("messages").
		Select("messages.id AS message_id", "messages.user_id AS author_id", "users.username", "messages.text", "messages.created_at").
		Joins("JOIN users ON messages.user_id = users.id").
		Order("messages.created_at DESC, messages.id DESC")
}
