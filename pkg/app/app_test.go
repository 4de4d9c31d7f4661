package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/app"
	"github.com/vancyferns/near2door/pkg/metrics"
	"github.com/vancyferns/near2door/pkg/middleware"
	"github.com/vancyferns/near2door/pkg/storage"
	"github.com/vancyferns/near2door/pkg/store"
)

func newApp(t *testing.T, opts ...app.Option) (*app.Application, string) {
	t.Helper()
	dir := t.TempDir()
	a := app.New(store.NewMemory(), storage.NewLocalDisk(dir, "/storage"), opts...)
	return a, dir
}

func serve(a *app.Application, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	a, _ := newApp(t)
	rec := serve(a, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestUnknownRoutesUseEnvelope(t *testing.T) {
	a, _ := newApp(t)

	rec := serve(a, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Not found"}`, rec.Body.String())

	rec = serve(a, http.MethodDelete, "/api/shops", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSIsOpenByDefault(t *testing.T) {
	a, _ := newApp(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/shops", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpointAndDomainCounters(t *testing.T) {
	a, _ := newApp(t)
	before := testutil.ToFloat64(metrics.AccountsRegistered.WithLabelValues("agent"))

	body := `{"name":"R","email":"r@example.com","password":"pw","role":"agent"}`
	rec := serve(a, http.MethodPost, "/api/auth/register", strings.NewReader(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AccountsRegistered.WithLabelValues("agent")))

	rec = serve(a, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "near2door_accounts_registered_total")
}

func TestUploadedImagesAreServed(t *testing.T) {
	a, dir := newApp(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "a.png"), []byte("png-bytes"), 0o644))

	rec := serve(a, http.MethodGet, "/storage/images/a.png", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestRateLimitRejectsBursts(t *testing.T) {
	a, _ := newApp(t, app.WithLimiter(middleware.NewMemoryLimiter(2, time.Minute)))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(a, http.MethodGet, "/api/shops", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestReconcileRepairsAreCounted(t *testing.T) {
	a, _ := newApp(t)
	ctx := context.Background()

	owner, err := a.Services.Accounts.Register(ctx, services.RegisterInput{Name: "O", Email: "o@example.com", Password: "pw", Role: "shop"})
	require.NoError(t, err)
	_, err = a.Repos.Shops.Update(ctx, *owner.ShopID, repositories.Set{"status": "open"}, time.Now())
	require.NoError(t, err)
	_, err = a.Services.Shops.Create(ctx, services.CreateShopInput{Name: "Orphan"})
	require.NoError(t, err)

	approved := metrics.ReconcileRepairs.WithLabelValues(services.RepairOwnerApproved)
	before := testutil.ToFloat64(approved)
	total := testutil.CollectAndCount(metrics.ReconcileRepairs)

	report, err := a.Services.Reconcile.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, report.OrphanShops, 1)
	assert.Equal(t, []string{owner.ID.Hex()}, report.OwnersApproved)
	assert.Equal(t, before+1, testutil.ToFloat64(approved))
	assert.Equal(t, total, testutil.CollectAndCount(metrics.ReconcileRepairs))
}

func TestPrintRoutes(t *testing.T) {
	a, _ := newApp(t)
	var out bytes.Buffer
	require.NoError(t, app.PrintRoutes(&out, a.Router))

	table := out.String()
	for _, want := range []string{
		"/api/auth/register",
		"/api/shops/{id}/products/{pid}",
		"/api/admin/approve-user/{id}",
		"/api/upload/image",
		"/metrics",
	} {
		assert.Contains(t, table, want)
	}
}

func TestEnsureIndexesIsNoopForMemory(t *testing.T) {
	a, _ := newApp(t)
	assert.NoError(t, a.EnsureIndexes(context.Background()))
	assert.NoError(t, a.Close(context.Background()))
}

func TestRegisterResponseShape(t *testing.T) {
	a, _ := newApp(t)
	body := `{"name":"S","email":"s@example.com","password":"pw","role":"shop"}`
	rec := serve(a, http.MethodPost, "/api/auth/register", strings.NewReader(body))
	require.Equal(t, http.StatusCreated, rec.Code)

	var env struct {
		Data struct {
			User map[string]any `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "pending", env.Data.User["status"])
	assert.NotContains(t, env.Data.User, "password")
}
