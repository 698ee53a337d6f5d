package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"cabinet_backend/database"
	"cabinet_backend/internal/app"
	"cabinet_backend/internal/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// WebhookSecret - общий секрет вебхука в интеграционных тестах.
const WebhookSecret = "integration-webhook-secret"

// TestServer - приложение поверх sqlite плюс стаб платежного шлюза.
type TestServer struct {
	Server  *httptest.Server
	DB      *gorm.DB
	Gateway *GatewayStub

	tempDir string
}

// GatewayStub имитирует API создания платежей: запоминает последний
// полученный запрос и возвращает фиксированный confirmation_url.
type GatewayStub struct {
	server *httptest.Server

	mu          sync.Mutex
	lastPayload map[string]interface{}
}

func newGatewayStub() *GatewayStub {
	stub := &GatewayStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)

		stub.mu.Lock()
		stub.lastPayload = payload
		stub.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"stub-payment","confirmation":{"confirmation_url":"https://pay.example.com/confirm/stub-payment"}}`))
	}))
	return stub
}

// LastPayload возвращает тело последнего запроса к стабу.
func (g *GatewayStub) LastPayload() map[string]interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastPayload
}

// NewTestServer поднимает приложение с чистой sqlite-БД в t.TempDir().
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gatewayStub := newGatewayStub()

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "integration-test-jwt-secret"
	cfg.JWT.TTL = 60
	cfg.Gateway.ShopID = "test-shop"
	cfg.Gateway.SecretKey = "test-secret"
	cfg.Gateway.APIURL = gatewayStub.server.URL
	cfg.Gateway.WebhookSecret = WebhookSecret
	cfg.Gateway.AppBaseURL = "https://cabinet.example.com"
	cfg.Gateway.Currency = "RUB"
	config.AppConfig = cfg

	// Сервер общий для всех тестов пакета, поэтому каталог живет дольше
	// первого теста и убирается в Close.
	dir, err := os.MkdirTemp("", "cabinet-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dsn := filepath.Join(dir, "integration.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database (%s): %v", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get *sql.DB from GORM: %v", err)
	}
	// Один коннект, чтобы sqlite не ловил database is locked.
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	router := app.SetupRouter(cfg, db)
	server := httptest.NewServer(router)

	return &TestServer{
		Server:  server,
		DB:      db,
		Gateway: gatewayStub,
		tempDir: dir,
	}
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Gateway.server.Close()
	sqlDB, _ := ts.DB.DB()
	sqlDB.Close()
	os.RemoveAll(ts.tempDir)
}

// SendRequest отправляет JSON-запрос с опциональным Bearer-токеном.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to build HTTP request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return ts.do(t, req)
}

// SendRawRequest отправляет произвольное тело с произвольными заголовками
// (нужно вебхуку, который аутентифицируется не JWT).
func (ts *TestServer) SendRawRequest(t *testing.T, method, path string, headers map[string]string, body []byte) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(method, ts.Server.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build HTTP request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return ts.do(t, req)
}

func (ts *TestServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Failed to send HTTP request: %v", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return res, string(resBody)
}
