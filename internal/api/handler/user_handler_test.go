package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/warbler/internal/model"
)

func (e *testEnv) seedFan(userID, fanID string) {
	e.t.Helper()
	require.NoError(e.t, e.db.Create(&model.Fan{ID: uuid.New().String(), UserID: userID, FanID: fanID}).Error)
}

func TestShowUser(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")
	env.seedMessage(u1.ID, "m1-text")

	// 个人主页无需登录
	c := env.client()
	resp, body := env.get(c, fmt.Sprintf("/users/%s", u1.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "u1")
	assert.Contains(t, body, "m1-text")
	assert.Contains(t, body, "followers_count")
}

func TestShowUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	c := env.client()
	resp, _ := env.get(c, "/users/no-such-id")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestShowFollowing(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")
	u2 := env.seedUser("u2")
	require.NoError(t, env.rel.Follow(context.Background(), u1.ID, u2.ID))

	c := env.client()
	env.login(c, u1.ID)

	resp, body := env.get(c, fmt.Sprintf("/users/%s/following", u1.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "u2")
}

func TestShowFollowers(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")
	u2 := env.seedUser("u2")
	env.seedFan(u2.ID, u1.ID)

	c := env.client()
	env.login(c, u2.ID)

	resp, body := env.get(c, fmt.Sprintf("/users/%s/followers", u2.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "u1")
}

func TestFollowingLoggedOut(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")

	c := env.client()
	resp, body := env.get(c, fmt.Sprintf("/users/%s/following", u1.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Access unauthorized.")
}

func TestFollowersLoggedOut(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")

	c := env.client()
	_, body := env.get(c, fmt.Sprintf("/users/%s/followers", u1.ID))
	assert.Contains(t, body, "Access unauthorized.")
}

func TestFollowUser(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")
	u3 := env.seedUser("u3")

	c := env.noRedirectClient()
	env.login(c, u1.ID)

	resp, _ := env.postForm(c, fmt.Sprintf("/users/follow/%s", u3.ID), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/users/%s/following", u1.ID), resp.Header.Get("Location"))

	_, body := env.get(c, fmt.Sprintf("/users/%s/following", u1.ID))
	assert.Contains(t, body, "u3")
}

func TestStopFollowingUser(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")
	u2 := env.seedUser("u2")
	require.NoError(t, env.rel.Follow(context.Background(), u1.ID, u2.ID))

	c := env.client()
	env.login(c, u1.ID)

	resp, body := env.postForm(c, fmt.Sprintf("/users/stop-following/%s", u2.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, `"username":"u2"`)

	ok, err := env.rel.IsFollowing(context.Background(), u1.ID, u2.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowLoggedOut(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")

	c := env.client()
	_, body := env.postForm(c, fmt.Sprintf("/users/follow/%s", u1.ID), nil)
	assert.Contains(t, body, "Access unauthorized.")
}

func TestFollowSelf(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")

	c := env.client()
	env.login(c, u1.ID)

	resp, _ := env.postForm(c, fmt.Sprintf("/users/follow/%s", u1.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFollowUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.seedUser("u1")

	c := env.client()
	env.login(c, u1.ID)

	resp, _ := env.postForm(c, "/users/follow/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
