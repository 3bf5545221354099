package model

import "time"

// Inbox 首页时间线投递项（按 user_id 切分）
type Inbox struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_inbox_user;uniqueIndex:ux_inbox_user_message"`
	MessageID string `gorm:"type:varchar(36);index:idx_inbox_message;uniqueIndex:ux_inbox_user_message"`
	// 复合唯一键，避免重复 (user, message)
	// ux_inbox_user_message = (user_id, message_id)
	Score     int64     `gorm:"index:idx_inbox_user_score"`
	CreatedAt time.Time `gorm:"index:idx_inbox_user_score"`
}

func (Inbox) TableName() string { return "inbox" }
