package handler

import (
	"github.com/d60-Lab/warbler/internal/api/session"
	"github.com/d60-Lab/warbler/internal/cache"
	"github.com/d60-Lab/warbler/internal/service"
)

// Handler 持有各业务服务
type Handler struct {
	users     service.UserService
	rel       service.RelationshipService
	messages  service.MessageService
	timeline  service.TimelineService
	followers *cache.FollowerCache
	sess      *session.Manager
}

func New(
	users service.UserService,
	rel service.RelationshipService,
	messages service.MessageService,
	timeline service.TimelineService,
	followers *cache.FollowerCache,
	sess *session.Manager,
) *Handler {
	return &Handler{
		users:     users,
		rel:       rel,
		messages:  messages,
		timeline:  timeline,
		followers: followers,
		sess:      sess,
	}
}
