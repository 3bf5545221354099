package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
)

var (
	ErrEmptyText = errors.New("message text is required")
	ErrNotOwner  = errors.New("not the message owner")
)

// MessageService 消息发布 / 删除 / 点赞
type MessageService interface {
	// Post 在一个事务内落地 Message 与 Outbox 事件
	Post(ctx context.Context, authorID, text string) (*model.Message, error)
	Get(ctx context.Context, id string) (*model.Message, error)
	// Delete 仅作者本人可删；连带清理点赞与 inbox 投递
	Delete(ctx context.Context, actorID, messageID string) error
	Like(ctx context.Context, userID, messageID string) error
	Unlike(ctx context.Context, userID, messageID string) error
	HasLiked(ctx context.Context, userID, messageID string) (bool, error)
}

type messageService struct {
	db       *gorm.DB
	messages repository.MessageRepository
	likes    repository.LikeRepository
}

func NewMessageService(db *gorm.DB, messages repository.MessageRepository, likes repository.LikeRepository) MessageService {
	return &messageService{db: db, messages: messages, likes: likes}
}

func (s *messageService) Post(ctx context.Context, authorID, text string) (*model.Message, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	now := time.Now()
	m := &model.Message{ID: uuid.New().String(), UserID: authorID, Text: text, CreatedAt: now, UpdatedAt: now}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		out := &model.Outbox{ID: uuid.New().String(), MessageID: m.ID, AuthorID: authorID, CreatedAt: now, Status: "pending"}
		return tx.Create(out).Error
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *messageService) Get(ctx context.Context, id string) (*model.Message, error) {
	return s.messages.GetByID(ctx, id)
}

func (s *messageService) Delete(ctx context.Context, actorID, messageID string) error {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if m.UserID != actorID {
		return ErrNotOwner
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", messageID).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id = ?", messageID).Delete(&model.Inbox{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id = ?", messageID).Delete(&model.Outbox{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", messageID).Delete(&model.Message{}).Error
	})
}

func (s *messageService) Like(ctx context.Context, userID, messageID string) error {
	// 消息必须存在；允许给自己的消息点赞
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return err
	}
	return s.likes.Create(ctx, userID, messageID)
}

func (s *messageService) Unlike(ctx context.Context, userID, messageID string) error {
	return s.likes.Delete(ctx, userID, messageID)
}

func (s *messageService) HasLiked(ctx context.Context, userID, messageID string) (bool, error) {
	return s.likes.Exists(ctx, userID, messageID)
}
