package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nationportal/database"
	"nationportal/models"
	"nationportal/session"
)

// flakyStore fails every save from the failFrom-th one on. Zero never fails.
type flakyStore struct {
	*database.DocumentService
	mu       sync.Mutex
	saves    int
	failFrom int
}

func (f *flakyStore) Save(doc *models.NationDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.failFrom > 0 && f.saves >= f.failFrom {
		return errors.New("disk full")
	}
	return f.DocumentService.Save(doc)
}

func (f *flakyStore) failAfterNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFrom = f.saves + n
}

func (f *flakyStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func setupFlakyServer(t *testing.T) (*MockApplication, *flakyStore, *testClient) {
	t.Helper()
	app := setupTestApp(t, 1000)
	store := &flakyStore{DocumentService: app.store}
	app.sessions = session.NewManager(store, session.WithManagerLogger(app.logger))
	server := httptestServer(t, app)
	return app, store, newTestClient(t, server.URL)
}

func TestAdminConsoleFormIsOneSave(t *testing.T) {
	app, store, c := setupFlakyServer(t)
	c.loginAdmin()

	// A second save would fail; the combined form must not need one.
	store.failAfterNext(2)
	status, body := c.post("/admin/stats", url.Values{
		"formalName":     {"통합 연방"},
		"readinessLevel": {"10"},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, 1, store.count())

	disk, err := app.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "통합 연방", disk.Stats.FormalName)
	assert.Equal(t, 10, disk.Details.Military.Numerical.ReadinessLevel)
}

func TestAdminConsoleFormFailsWhole(t *testing.T) {
	app, store, c := setupFlakyServer(t)
	c.loginAdmin()

	store.failAfterNext(1)
	status, body := c.post("/admin/stats", url.Values{
		"formalName":     {"절반만"},
		"readinessLevel": {"10"},
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "저장에 실패했습니다. 잠시 후 다시 시도하세요.", body["error"])

	def := models.DefaultDocument()
	disk, err := app.store.Load()
	require.NoError(t, err)
	assert.Equal(t, def.Stats.FormalName, disk.Stats.FormalName)
	assert.Equal(t, def.Details.Military.Numerical.ReadinessLevel, disk.Details.Military.Numerical.ReadinessLevel)

	mem := c.document()
	assert.Equal(t, def.Stats.FormalName, mem.Stats.FormalName)
	assert.Equal(t, def.Details.Military.Numerical.ReadinessLevel, mem.Details.Military.Numerical.ReadinessLevel)
}

func TestAdminConsoleUnknownFieldKeepsMilitary(t *testing.T) {
	app, store, c := setupFlakyServer(t)
	c.loginAdmin()

	status, _ := c.post("/admin/stats", url.Values{"planet": {"x"}, "troopCount": {"1"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 0, store.count())

	doc, err := app.store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDocument().Details.Military.Numerical.TroopCount, doc.Details.Military.Numerical.TroopCount)
}

func TestMilitaryFormErrorOrder(t *testing.T) {
	form := url.Values{
		"nuclearWarheads": {"lots"},
		"shipCount":       {"some"},
		"troopCount":      {"many"},
		"readinessLevel":  {"high"},
	}
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/admin/military", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		_, _, err := militaryPatchFromForm(req)
		require.ErrorIs(t, err, errBadNumber)
		assert.True(t, strings.HasPrefix(err.Error(), "troopCount:"), err.Error())
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/military", strings.NewReader("tankCount=3&readinessLevel=50"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	patch, present, err := militaryPatchFromForm(req)
	require.NoError(t, err)
	assert.True(t, present)
	require.NotNil(t, patch.TankCount)
	assert.Equal(t, int64(3), *patch.TankCount)
	require.NotNil(t, patch.ReadinessLevel)
	assert.Equal(t, 50, *patch.ReadinessLevel)
	assert.Nil(t, patch.TroopCount)
}
