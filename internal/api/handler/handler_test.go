package handler_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/warbler/config"
	"github.com/d60-Lab/warbler/internal/api/handler"
	"github.com/d60-Lab/warbler/internal/api/router"
	"github.com/d60-Lab/warbler/internal/api/session"
	"github.com/d60-Lab/warbler/internal/cache"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/internal/repository"
	"github.com/d60-Lab/warbler/internal/service"
	"github.com/d60-Lab/warbler/pkg/database"
)

// testEnv 起一个完整 HTTP 服务：sqlite + miniredis + 全部业务服务
type testEnv struct {
	t        *testing.T
	db       *gorm.DB
	users    service.UserService
	messages service.MessageService
	rel      service.RelationshipService
	sess     *session.Manager
	server   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	users := service.NewUserService(userRepo)
	// 测试里不需要异步冗余，直接同步查 follows 表
	rel := service.NewRelationshipService(followRepo, fanRepo, nil)
	messages := service.NewMessageService(db, messageRepo, likeRepo)
	timeline := service.NewTimelineService(messageRepo)
	followers := cache.NewFollowerCache(db, rdb, time.Minute)

	cfg := config.Default()
	cfg.Server.Mode = "test"
	sess := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)

	h := handler.New(users, rel, messages, timeline, followers, sess)
	srv := httptest.NewServer(router.New(cfg, h, sess, userRepo))
	t.Cleanup(srv.Close)

	return &testEnv{
		t:        t,
		db:       db,
		users:    users,
		messages: messages,
		rel:      rel,
		sess:     sess,
		server:   srv,
	}
}

// client 带 cookie jar、跟随重定向
func (e *testEnv) client() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(e.t, err)
	return &http.Client{Jar: jar}
}

// noRedirectClient 停在第一个响应上，便于断言 302 与 Location
func (e *testEnv) noRedirectClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(e.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// login 给 client 的 jar 写入 userID 的会话 cookie
func (e *testEnv) login(c *http.Client, userID string) {
	e.t.Helper()
	token, err := e.sess.Issue(userID)
	require.NoError(e.t, err)
	u, err := url.Parse(e.server.URL)
	require.NoError(e.t, err)
	c.Jar.SetCookies(u, []*http.Cookie{{Name: session.SessionCookie, Value: token, Path: "/"}})
}

func (e *testEnv) get(c *http.Client, path string) (*http.Response, string) {
	e.t.Helper()
	resp, err := c.Get(e.server.URL + path)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp, string(body)
}

func (e *testEnv) postForm(c *http.Client, path string, form url.Values) (*http.Response, string) {
	e.t.Helper()
	resp, err := c.PostForm(e.server.URL+path, form)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp, string(body)
}

func (e *testEnv) seedUser(username string) *model.User {
	e.t.Helper()
	u, err := e.users.Signup(context.Background(), username, username+"@email.com", "password", "")
	require.NoError(e.t, err)
	return u
}

func (e *testEnv) seedMessage(userID, text string) *model.Message {
	e.t.Helper()
	m, err := e.messages.Post(context.Background(), userID, text)
	require.NoError(e.t, err)
	return m
}
