package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/comitanigiacomo/habit-hero/internal/config"
	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testConfig(storage string) *config.Config {
	cfg := config.Default()
	cfg.App.Storage = storage
	cfg.Auth.JWTSecret = "e2e-secret"
	cfg.Server.RateLimit = 0
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "habit_user")
	cfg.DB.Password = getEnv("DB_PASSWORD", "secret")
	cfg.DB.Name = getEnv("DB_NAME", "habit_db")
	return cfg
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) call(method, path string, body any) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func TestEndToEnd_HabitLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, storage := range []string{config.StorageMemory, config.StoragePostgres} {
		t.Run(storage, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			core, logs := observer.New(zap.InfoLevel)
			clock := domain.NewFixedClock(time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC))

			a, err := newApp(ctx, testConfig(storage), clock, zap.New(core))
			if err != nil {
				t.Skipf("Skipping %s end-to-end test: %v", storage, err)
			}
			require.NoError(t, a.start(ctx, ""))
			defer a.shutdown(context.Background())

			srv := httptest.NewServer(a.router)
			defer srv.Close()

			c := &client{t: t, base: srv.URL + "/api/v1"}
			suffix := fmt.Sprintf("%d", time.Now().UnixNano())
			email := "e2e" + suffix + "@example.com"

			var habitID int64

			t.Run("1. Register and login", func(t *testing.T) {
				status, body := c.call(http.MethodPost, "/auth/register", map[string]string{
					"username": "e2e" + suffix,
					"email":    email,
					"password": "correct-horse",
				})
				require.Equal(t, http.StatusCreated, status, string(body))

				status, body = c.call(http.MethodPost, "/auth/login", map[string]string{
					"email":    email,
					"password": "correct-horse",
				})
				require.Equal(t, http.StatusOK, status, string(body))

				var login struct {
					Token string `json:"token"`
				}
				require.NoError(t, json.Unmarshal(body, &login))
				require.NotEmpty(t, login.Token)
				c.token = login.Token
			})

			t.Run("2. Create a weekly habit", func(t *testing.T) {
				status, body := c.call(http.MethodPost, "/habits", map[string]any{
					"name":       "Long run",
					"category":   "health",
					"frequency":  "weekly",
					"target_day": "Sunday",
				})
				require.Equal(t, http.StatusCreated, status, string(body))

				var habit domain.Habit
				require.NoError(t, json.Unmarshal(body, &habit))
				require.NotZero(t, habit.ID)
				habitID = habit.ID
			})

			t.Run("3. Not due on a Thursday", func(t *testing.T) {
				status, body := c.call(http.MethodGet, fmt.Sprintf("/habits/%d/status", habitID), nil)
				require.Equal(t, http.StatusOK, status)

				var record domain.StatusRecord
				require.NoError(t, json.Unmarshal(body, &record))
				assert.Equal(t, domain.StatusNotDue, record.Status)
				assert.False(t, record.IsDueToday)
			})

			t.Run("4. Two consecutive weeks make a streak", func(t *testing.T) {
				for _, day := range []string{"2024-03-03", "2024-03-10"} {
					status, body := c.call(http.MethodPost, "/checkins", map[string]any{"habit_id": habitID, "date": day})
					require.Equal(t, http.StatusOK, status, string(body))
				}

				status, body := c.call(http.MethodGet, fmt.Sprintf("/habits/%d/streak", habitID), nil)
				require.Equal(t, http.StatusOK, status)
				assert.JSONEq(t, fmt.Sprintf(`{"habit_id":%d,"streak":2}`, habitID), string(body))
			})

			t.Run("5. Worker publishes the streak change", func(t *testing.T) {
				assert.Eventually(t, func() bool {
					for _, e := range logs.FilterMessage("event").All() {
						if e.ContextMap()["routing_key"] == domain.RoutingKeyStreakChanged {
							return true
						}
					}
					return false
				}, 2*time.Second, 20*time.Millisecond)
			})

			t.Run("6. Undo and delete", func(t *testing.T) {
				status, _ := c.call(http.MethodPost, fmt.Sprintf("/checkins/%d/undo?date=2024-03-10", habitID), nil)
				require.Equal(t, http.StatusOK, status)

				status, body := c.call(http.MethodGet, fmt.Sprintf("/habits/%d/streak", habitID), nil)
				require.Equal(t, http.StatusOK, status)
				assert.JSONEq(t, fmt.Sprintf(`{"habit_id":%d,"streak":0}`, habitID), string(body))

				status, _ = c.call(http.MethodDelete, fmt.Sprintf("/habits/%d", habitID), nil)
				assert.Equal(t, http.StatusNoContent, status)

				status, _ = c.call(http.MethodGet, fmt.Sprintf("/checkins/habit/%d", habitID), nil)
				assert.Equal(t, http.StatusNotFound, status)
			})
		})
	}
}

func TestNewApp_UnknownStorage(t *testing.T) {
	cfg := testConfig("cassandra")

	_, err := newApp(context.Background(), cfg, domain.NewFixedClock(time.Now()), zap.NewNop())

	assert.ErrorIs(t, err, config.ErrUnknownStorage)
}

func TestApp_ShutdownStopsWorkerBeforeClosing(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	a, err := newApp(context.Background(), testConfig(config.StorageMemory), domain.NewFixedClock(time.Now()), zap.New(core))
	require.NoError(t, err)

	// The parent context stays alive, so only shutdown can stop the worker.
	require.NoError(t, a.start(context.Background(), "@hourly"))

	workerDoneAtClose := false
	a.closers = append(a.closers, func() {
		expired, cancel := context.WithTimeout(context.Background(), 0)
		defer cancel()
		workerDoneAtClose = a.worker.Wait(expired) == nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	a.shutdown(ctx)

	assert.True(t, workerDoneAtClose)
	assert.Equal(t, 1, logs.FilterMessage("streak worker shutting down").Len())
	assert.Zero(t, logs.FilterMessage("streak worker did not stop in time").Len())
}
