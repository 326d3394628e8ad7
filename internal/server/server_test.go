package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quorahq/accountserver/config"
	"github.com/quorahq/accountserver/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		ServerPort:   0,
		StoreBackend: config.StoreBackendMemory,
		JWTSecret:    "test-secret",
		SessionTTL:   time.Hour,
		MQ:           config.MQConfig{Backend: config.MQBackendNone},
	}
}

func TestNew_MemoryBackendServesRoutes(t *testing.T) {
	srv, err := New(context.Background(), memoryConfig(), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := `{"userName":"alice","emailAddress":"a@x.com","password":"Pw1!"}`
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/user/signup", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/userprofile/anything", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.JWTSecret = ""
	_, err := New(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)

	cfg = memoryConfig()
	cfg.MQ.Backend = "kafka"
	_, err = New(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestNew_RabbitMQWithoutURLFails(t *testing.T) {
	cfg := memoryConfig()
	cfg.MQ.Backend = config.MQBackendRabbitMQ
	_, err := New(context.Background(), cfg, logging.Discard())
	assert.ErrorContains(t, err, "rabbitmq url is required")
}
