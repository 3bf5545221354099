package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/pkg/database"
)

// 每个测试独立的 shared-cache 内存库，避免连接池拿到不同的 :memory: 实例
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@email.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedMessage(t *testing.T, db *gorm.DB, userID, text string) *model.Message {
	t.Helper()
	m := &model.Message{ID: uuid.New().String(), UserID: userID, Text: text}
	require.NoError(t, db.Create(m).Error)
	return m
}
