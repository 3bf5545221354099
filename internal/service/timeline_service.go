package service

import (
	"context"

	"github.com/d60-Lab/warbler/internal/repository"
)

// DefaultFeedLimit 各时间线页默认条数
const DefaultFeedLimit = 100

// TimelineService 首页 / 个人页 / 点赞页时间线
type TimelineService interface {
	// Home 自己的消息加上关注对象投递到 inbox 的消息
	Home(ctx context.Context, userID string, limit int) ([]repository.FeedItem, error)
	// Recent 匿名首页：最近公开消息
	Recent(ctx context.Context, limit int) ([]repository.FeedItem, error)
	Profile(ctx context.Context, userID string, limit int) ([]repository.FeedItem, error)
	Liked(ctx context.Context, userID string, limit int) ([]repository.FeedItem, error)
}

type timelineService struct {
	messages repository.MessageRepository
}

func NewTimelineService(messages repository.MessageRepository) TimelineService {
	return &timelineService{messages: messages}
}

func (s *timelineService) Home(ctx context.Context, userID string, limit int) ([]repository.FeedItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return s.messages.ListHome(ctx, userID, limit)
}

func (s *timelineService) Recent(ctx context.Context, limit int) ([]repository.FeedItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return s.messages.ListRecent(ctx, limit)
}

func (s *timelineService) Profile(ctx context.Context, userID string, limit int) ([]repository.FeedItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return s.messages.ListByAuthor(ctx, userID, limit)
}

func (s *timelineService) Liked(ctx context.Context, userID string, limit int) ([]repository.FeedItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return s.messages.ListLikedBy(ctx, userID, limit)
}
