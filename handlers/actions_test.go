package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFRequired(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)

	form := url.Values{"code": {"admin123"}}
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/login/admin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCSRFHeader(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)

	send := func(method, token string) (int, map[string]string) {
		form := url.Values{"code": {"admin123"}}
		req, err := http.NewRequest(method, server.URL+"/login/admin", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if token != "" {
			req.Header.Set("X-CSRF-Token", token)
		}
		return c.do(req)
	}

	status, body := send(http.MethodPost, "forged")
	assert.Equal(t, http.StatusForbidden, status)
	assert.NotEmpty(t, body["error"], "rejections are JSON for the page script")

	status, body = send(http.MethodPost, c.csrf)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "/admin", body["redirect"])
}

func TestCSRFMiddlewareMethods(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := CSRFMiddleware(next)

	for _, tc := range []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusNoContent},
		{http.MethodHead, http.StatusNoContent},
		{http.MethodPost, http.StatusForbidden},
		{http.MethodPut, http.StatusForbidden},
		{http.MethodPatch, http.StatusForbidden},
		{http.MethodDelete, http.StatusForbidden},
	} {
		t.Run(tc.method, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/", nil)
			req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "cookie-token"})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)

			req = httptest.NewRequest(tc.method, "/", nil)
			req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "cookie-token"})
			req.Header.Set("X-CSRF-Token", "cookie-token")
			rec = httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusNoContent, rec.Code)
		})
	}
}

func TestAdminLogin(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)

	status, body := c.post("/login/admin", url.Values{"code": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "승인 코드가 틀립니다.", body["error"])

	status, body = c.post("/login/admin", url.Values{"code": {"admin123"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/admin", body["redirect"])
}

func TestCitizenFlow(t *testing.T) {
	_, server := setupTestServer(t)
	admin := newTestClient(t, server.URL)
	admin.loginAdmin()
	status, body := admin.post("/admin/citizens/add", url.Values{"username": {"kim"}, "password": {"pw1"}})
	require.Equal(t, http.StatusOK, status, body)

	kim := newTestClient(t, server.URL)
	status, body = kim.post("/login/citizen", url.Values{"username": {"kim"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "정보가 일치하지 않습니다.", body["error"])

	kim.loginCitizen("kim", "pw1")
	status, page := kim.get("/profile")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, page, "kim님의 시민권")

	status, body = kim.post("/forum/post", url.Values{"title": {"공지"}, "content": {"내용"}, "category": {"general"}})
	require.Equal(t, http.StatusOK, status, body)

	doc := kim.document()
	require.Len(t, doc.Posts, 2)
	assert.Equal(t, "kim", doc.Posts[0].Author)
	assert.Equal(t, "1", doc.Posts[1].ID)

	status, body = kim.post("/forum/report", url.Values{"post_id": {"1"}, "reason": {"중복"}})
	require.Equal(t, http.StatusOK, status, body)
	status, body = kim.post("/forum/report", url.Values{"post_id": {"nope"}, "reason": {"x"}})
	assert.Equal(t, http.StatusNotFound, status, body)

	doc = kim.document()
	require.Len(t, doc.Posts[1].Reports, 1)
	assert.Equal(t, "kim", doc.Posts[1].Reports[0].Reporter)

	status, body = kim.post("/profile/password", url.Values{"new_password": {"pw2"}})
	require.Equal(t, http.StatusOK, status, body)
	status, _ = kim.get("/profile")
	assert.Equal(t, http.StatusForbidden, status, "changing the password logs out")

	status, _ = kim.post("/login/citizen", url.Values{"username": {"kim"}, "password": {"pw1"}})
	assert.Equal(t, http.StatusUnauthorized, status)
	kim.loginCitizen("kim", "pw2")
}

func TestAnonymousActionsRejected(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)

	for path, form := range map[string]url.Values{
		"/forum/post":         {"title": {"t"}, "content": {"c"}},
		"/forum/report":       {"post_id": {"1"}},
		"/forum/delete":       {"post_id": {"1"}},
		"/profile/password":   {"new_password": {"x"}},
		"/admin/stats":        {"motto": {"x"}},
		"/admin/military":     {"readinessLevel": {"1"}},
		"/admin/economy":      {"gdpGrowthRate": {"1%"}},
		"/admin/history":      {"era": {"ancient"}, "text": {"x"}},
		"/admin/citizens/add": {"username": {"a"}, "password": {"b"}},
		"/admin/reset":        nil,
		"/admin/backup":       nil,
	} {
		t.Run(path, func(t *testing.T) {
			status, body := c.post(path, form)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, "접근 권한이 없습니다.", body["error"])
		})
	}

	doc := c.document()
	assert.Len(t, doc.Posts, 1)
	assert.Empty(t, doc.Posts[0].Reports)
}

func TestCreatePostValidation(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)
	c.loginAdmin()

	status, _ := c.post("/forum/post", url.Values{"title": {""}, "content": {"c"}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := c.post("/forum/post", url.Values{"title": {"t"}, "content": {"c"}, "category": {"rumor"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "알 수 없는 게시판 분류입니다.", body["error"])

	status, _ = c.post("/forum/post", url.Values{"title": {strings.Repeat("가", 201)}, "content": {"c"}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeletePost(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)
	c.loginAdmin()

	status, body := c.post("/forum/delete", url.Values{"post_id": {"missing"}})
	assert.Equal(t, http.StatusOK, status, body)
	assert.Len(t, c.document().Posts, 1)

	status, body = c.post("/forum/delete", url.Values{"post_id": {"1"}})
	require.Equal(t, http.StatusOK, status, body)
	assert.Empty(t, c.document().Posts)
}

func TestLogout(t *testing.T) {
	app, server := setupTestServer(t)
	c := newTestClient(t, server.URL)
	c.loginAdmin()
	before := app.Sessions().Len()

	status, body := c.post("/logout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/", body["redirect"])
	assert.Equal(t, before-1, app.Sessions().Len())

	status, _ = c.get("/admin")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestLoginRateLimit(t *testing.T) {
	app := setupTestApp(t, 2)
	server := httptestServer(t, app)
	c := newTestClient(t, server.URL)

	for i := 0; i < 2; i++ {
		status, _ := c.post("/login/admin", url.Values{"code": {"wrong"}})
		assert.Equal(t, http.StatusUnauthorized, status)
	}
	status, body := c.post("/login/admin", url.Values{"code": {"admin123"}})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, rateLimitMessage, body["error"])
}

func TestDocumentRedactsPasswords(t *testing.T) {
	_, server := setupTestServer(t)
	admin := newTestClient(t, server.URL)
	admin.loginAdmin()
	status, _ := admin.post("/admin/citizens/add", url.Values{"username": {"kim"}, "password": {"secret"}})
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "secret", admin.document().Users[0].Password)

	anon := newTestClient(t, server.URL)
	doc := anon.document()
	require.Len(t, doc.Users, 1)
	assert.Equal(t, "kim", doc.Users[0].Username)
	assert.Empty(t, doc.Users[0].Password)
}

func TestMetricsEndpoint(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)
	c.loginAdmin()
	c.post("/login/admin", url.Values{"code": {"wrong"}})

	status, body := c.get("/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `portal_logins_total{result="ok",role="admin"} 1`)
	assert.Contains(t, body, `portal_logins_total{result="error",role="admin"} 1`)
	assert.Contains(t, body, "portal_active_sessions 1")
}
