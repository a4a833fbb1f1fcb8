package handlers

import (
	"context"
	"net/http"
	"time"

	uponor "uponor_bridge"
	"uponor_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockTelemetry struct {
	thermostats map[string]map[string]any
	system      map[string]any
	names       map[string]string
	ids         []string
	available   bool
	snapshot    uponor.Snapshot
	hasSnapshot bool

	subs chan struct{}
}

func (m *mockTelemetry) GetThermostatData(id string) map[string]any {
	return m.thermostats[id]
}
func (m *mockTelemetry) GetSystemData() map[string]any { return m.system }
func (m *mockTelemetry) ListThermostatIDs() []string   { return m.ids }
func (m *mockTelemetry) GetCustomName(id string) string {
	if name, ok := m.names[id]; ok {
		return name
	}
	return id
}
func (m *mockTelemetry) IsAvailable() bool { return m.available }
func (m *mockTelemetry) Snapshot() (uponor.Snapshot, bool) {
	return m.snapshot, m.hasSnapshot
}
func (m *mockTelemetry) Subscribe() (string, <-chan struct{}) {
	if m.subs == nil {
		m.subs = make(chan struct{}, 1)
	}
	return "test-sub", m.subs
}
func (m *mockTelemetry) Unsubscribe(id string) {}

type mockControl struct {
	setErr    error
	setCalls  int
	lastName  string
	lastValue string
}

func (m *mockControl) SetVariable(ctx context.Context, name, value string) error {
	m.setCalls++
	m.lastName = name
	m.lastValue = value
	return m.setErr
}

type mockPoller struct {
	refreshErr   error
	refreshCalls int
}

func (m *mockPoller) Run(ctx context.Context, tick time.Duration) {}
func (m *mockPoller) RefreshNow(ctx context.Context) error {
	m.refreshCalls++
	return m.refreshErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
