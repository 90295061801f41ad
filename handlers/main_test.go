package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nationportal/database"
	"nationportal/metrics"
	"nationportal/models"
	"nationportal/session"
	"nationportal/utils"
)

// MockApplication holds dependencies for handler tests.
type MockApplication struct {
	store       *database.DocumentService
	sessions    *session.Manager
	rateLimiter *models.RateLimiter
	storage     models.StorageService
	metrics     *metrics.Metrics
	uploadDir   string
	staticDir   string
	logger      *slog.Logger
}

func (a *MockApplication) Sessions() *session.Manager       { return a.sessions }
func (a *MockApplication) RateLimiter() *models.RateLimiter { return a.rateLimiter }
func (a *MockApplication) Storage() models.StorageService   { return a.storage }
func (a *MockApplication) Metrics() *metrics.Metrics        { return a.metrics }
func (a *MockApplication) Logger() *slog.Logger             { return a.logger }
func (a *MockApplication) UploadDir() string                { return a.uploadDir }
func (a *MockApplication) StaticDir() string                { return a.staticDir }
func (a *MockApplication) DataFile() string                 { return a.store.Path() }
func (a *MockApplication) ImageOrigin() string              { return "" }

// setupTestApp creates a full application stack backed by a temp document file.
func setupTestApp(t *testing.T, burst int) *MockApplication {
	t.Helper()
	require.NoError(t, LoadTemplates())

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	dir := t.TempDir()
	store, err := database.InitDocumentStore(filepath.Join(dir, "nation_data.json"), filepath.Join(dir, "backups"), logger)
	require.NoError(t, err)

	m := metrics.New()
	uploadDir := filepath.Join(dir, "uploads")
	app := &MockApplication{
		store:       store,
		sessions:    session.NewManager(store, session.WithManagerLogger(logger), session.WithActiveObserver(m.SetActiveSessions)),
		rateLimiter: models.NewRateLimiter(time.Hour, burst, time.Hour, 24*time.Hour),
		storage:     &utils.LocalStorage{UploadDir: uploadDir},
		metrics:     m,
		uploadDir:   uploadDir,
		staticDir:   filepath.Join(dir, "static"),
		logger:      logger,
	}
	t.Cleanup(app.rateLimiter.Stop)
	return app
}

func httptestServer(t *testing.T, app *MockApplication) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(SetupRouter(app))
	t.Cleanup(server.Close)
	return server
}

func setupTestServer(t *testing.T) (*MockApplication, *httptest.Server) {
	t.Helper()
	app := setupTestApp(t, 1000)
	return app, httptestServer(t, app)
}

// testClient is a browser-like client holding the session and CSRF cookies.
type testClient struct {
	t    *testing.T
	http *http.Client
	base string
	csrf string
}

// newTestClient makes an initial request to obtain the session and CSRF cookies.
func newTestClient(t *testing.T, serverURL string) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(serverURL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	u, _ := url.Parse(serverURL)
	for _, cookie := range jar.Cookies(u) {
		if cookie.Name == "csrf_token" {
			return &testClient{t: t, http: client, base: serverURL, csrf: cookie.Value}
		}
	}
	t.Fatal("CSRF token cookie not found in jar")
	return nil
}

func (c *testClient) get(path string) (int, string) {
	c.t.Helper()
	resp, err := c.http.Get(c.base + path)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, string(body)
}

// post submits a urlencoded form with the CSRF token and decodes the JSON answer.
func (c *testClient) post(path string, form url.Values) (int, map[string]string) {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", c.csrf)
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) do(req *http.Request) (int, map[string]string) {
	c.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	var result map[string]string
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func (c *testClient) document() models.NationDocument {
	c.t.Helper()
	resp, err := c.http.Get(c.base + "/api/document")
	require.NoError(c.t, err)
	defer resp.Body.Close()
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	var doc models.NationDocument
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&doc))
	return doc
}

func (c *testClient) loginAdmin() {
	c.t.Helper()
	status, body := c.post("/login/admin", url.Values{"code": {"admin123"}})
	require.Equal(c.t, http.StatusOK, status, body)
}

func (c *testClient) loginCitizen(username, password string) {
	c.t.Helper()
	status, body := c.post("/login/citizen", url.Values{"username": {username}, "password": {password}})
	require.Equal(c.t, http.StatusOK, status, body)
}
