package handlers

import (
	"net/http"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesForAnonymous(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)

	tests := []struct {
		path   string
		status int
		marker string
	}{
		{"/", http.StatusOK, "슈퍼파워 연방 공화국"},
		{"/overview", http.StatusOK, "국가 상세 정보"},
		{"/history", http.StatusOK, "국가 역사 연대기"},
		{"/military", http.StatusOK, "600,000명"},
		{"/economy", http.StatusOK, "반도체, AI 로봇"},
		{"/culture", http.StatusOK, "건국 기념 등불 축제"},
		{"/geography", http.StatusOK, "온대 기후"},
		{"/government", http.StatusOK, "입법부"},
		{"/forum", http.StatusOK, "국가 포털 개설을 환영합니다"},
		{"/admin", http.StatusForbidden, "접근 권한이 없습니다."},
		{"/profile", http.StatusForbidden, "로그인이 필요합니다."},
		{"/casino", http.StatusNotFound, "페이지를 찾을 수 없습니다."},
		{"/forum?category=rumor", http.StatusBadRequest, "알 수 없는 게시판 분류입니다."},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := c.get(tt.path)
			assert.Equal(t, tt.status, status)
			assert.Contains(t, body, tt.marker)
		})
	}
}

func TestMenuFollowsIdentity(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)

	_, body := c.get("/")
	assert.NotContains(t, body, `href="/admin"`)
	assert.NotContains(t, body, `href="/profile"`)

	c.loginAdmin()
	status, body := c.get("/admin")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `href="/admin"`)
	assert.Contains(t, body, "대통령 (관리자)")
	assert.Contains(t, body, "시민 관리")
}

func TestForumCategoryFilter(t *testing.T) {
	_, server := setupTestServer(t)
	c := newTestClient(t, server.URL)
	c.loginAdmin()

	status, body := c.post("/forum/post", url.Values{"title": {"청원 제목"}, "content": {"청원 내용"}, "category": {"petition"}})
	require.Equal(t, http.StatusOK, status, body)

	_, page := c.get("/forum?category=petition")
	assert.Contains(t, page, "청원 제목")
	assert.NotContains(t, page, "국가 포털 개설을 환영합니다")

	_, page = c.get("/forum?category=general")
	assert.NotContains(t, page, "청원 제목")
	assert.Contains(t, page, "국가 포털 개설을 환영합니다")
}

func TestCorruptDocumentPage(t *testing.T) {
	app, server := setupTestServer(t)
	require.NoError(t, os.WriteFile(app.store.Path(), []byte("{oops"), 0644))

	c := newTestClient(t, server.URL)
	status, body := c.get("/")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "국가 데이터 파일이 손상되었습니다")

	// the admin can still log in and restore the default document
	c.loginAdmin()
	status, resp := c.post("/admin/reset", nil)
	require.Equal(t, http.StatusOK, status, resp)

	status, body = c.get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "슈퍼파워 연방 공화국")
}

func TestSecurityHeaders(t *testing.T) {
	_, server := setupTestServer(t)
	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'self'")
}

func TestFormatNumber(t *testing.T) {
	for in, want := range map[int64]string{0: "0", 999: "999", 1000: "1,000", 600000: "600,000", -1234567: "-1,234,567"} {
		assert.Equal(t, want, formatNumber(in))
	}
}
