package model

import (
	"fmt"
	"time"
)

// DefaultImageURL 注册未传头像时的默认值
const DefaultImageURL = "/static/images/default-pic.png"

// User 用户（password 存 bcrypt 哈希，绝不落明文）
type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Username  string `gorm:"type:varchar(30);uniqueIndex;not null"`
	Email     string `gorm:"type:varchar(254);uniqueIndex;not null"`
	Password  string `gorm:"type:varchar(80);not null"`
	ImageURL  string `gorm:"type:varchar(255)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

func (u *User) String() string {
	return fmt.Sprintf("<User #%s: %s, %s>", u.ID, u.Username, u.Email)
}
