package model

import "time"

// Outbox 消息外发盒（发布事务内写入，扇出 worker 消费）
type Outbox struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	MessageID   string    `gorm:"type:varchar(36);uniqueIndex"`
	AuthorID    string    `gorm:"type:varchar(36);index:idx_outbox_author"`
	CreatedAt   time.Time `gorm:"index"`
	Status      string    `gorm:"type:varchar(16);index"` // pending, processing, done
	ProcessedAt *time.Time
	FanoutCount int64
}

func (Outbox) TableName() string { return "outbox" }
