package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CurrUserKey 会话里当前用户 id 的键名；缺失即匿名
const CurrUserKey = "curr_user"

const (
	// SessionCookie 存 HS256 签名的会话 token
	SessionCookie = "warbler_session"
	// FlashCookie 存一次性提示消息（base64 JSON 数组）
	FlashCookie = "warbler_flash"
)

var ErrInvalidToken = errors.New("invalid session token")

// Manager 签发 / 解析会话 token
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue 为 userID 签发会话 token
func (m *Manager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		CurrUserKey: userID,
		"iat":       now.Unix(),
		"exp":       now.Add(m.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse 校验 token 并返回其中的用户 id
func (m *Manager) Parse(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims[CurrUserKey].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// SetCurrentUser 登录：写会话 cookie
func SetCurrentUser(c *gin.Context, m *Manager, userID string) error {
	token, err := m.Issue(userID)
	if err != nil {
		return err
	}
	c.SetCookie(SessionCookie, token, int(m.ttl/time.Second), "/", "", false, true)
	return nil
}

// Clear 登出：清会话 cookie
func Clear(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// Flash 追加一条一次性提示，随下一次渲染返回
func Flash(c *gin.Context, msg string) {
	msgs := readFlashes(c)
	msgs = append(msgs, msg)
	payload, _ := json.Marshal(msgs)
	c.SetCookie(FlashCookie, base64.URLEncoding.EncodeToString(payload), 300, "/", "", false, false)
}

// PopFlashes 读出并清空 flash
func PopFlashes(c *gin.Context) []string {
	msgs := readFlashes(c)
	if len(msgs) > 0 {
		c.SetCookie(FlashCookie, "", -1, "/", "", false, false)
	}
	return msgs
}

func readFlashes(c *gin.Context) []string {
	raw, err := c.Cookie(FlashCookie)
	if err != nil || raw == "" {
		return nil
	}
	payload, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var msgs []string
	if json.Unmarshal(payload, &msgs) != nil {
		return nil
	}
	return msgs
}
