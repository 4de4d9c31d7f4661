package controllers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/routes"
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/router"
	"github.com/vancyferns/near2door/pkg/storage"
	"github.com/vancyferns/near2door/pkg/store"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type api struct {
	t *testing.T
	h http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	disk := storage.NewLocalDisk(t.TempDir(), "http://localhost:8080/storage")
	svc := services.New(repositories.New(store.NewMemory()), services.Options{Disk: disk})
	r := router.New()
	routes.RegisterAPI(r, svc, routes.Options{MaxUploadBytes: 1 << 20})
	return &api{t: t, h: r.Handler()}
}

func (a *api) do(method, path string, body any) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return a.serve(req)
}

func (a *api) serve(req *http.Request) (int, envelope) {
	a.t.Helper()
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(a.t, rec.Code, env.Status)
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type doc = map[string]any

func (a *api) register(email, role string) doc {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/auth/register", doc{
		"name": "Test", "email": email, "password": "pw", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	return decode[map[string]doc](a.t, env.Data)["user"]
}

// ─── Auth ────────────────────────────────────────────────────────────────────

func TestRegisterShopAccount(t *testing.T) {
	a := newAPI(t)

	user := a.register("shop@example.com", "shop")
	assert.Equal(t, "pending", user["status"])
	assert.Equal(t, "shop", user["role"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "_id")
	require.IsType(t, "", user["id"])
	require.IsType(t, "", user["shop_id"])

	code, env := a.do(http.MethodGet, "/api/shops/"+user["shop_id"].(string), nil)
	require.Equal(t, http.StatusOK, code)
	shop := decode[doc](t, env.Data)
	assert.Equal(t, "pending", shop["status"])
	assert.Equal(t, user["id"], shop["owner_id"])
	assert.Equal(t, []any{}, shop["products"])
}

func TestRegisterConflictAndValidation(t *testing.T) {
	a := newAPI(t)
	a.register("dup@example.com", "customer")

	code, env := a.do(http.MethodPost, "/api/auth/register", doc{"name": "X", "email": "dup@example.com", "password": "pw"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email already registered", env.Message)

	code, env = a.do(http.MethodPost, "/api/auth/register", doc{"email": "new@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "name")
	assert.Contains(t, env.Errors, "password")

	code, _ = a.do(http.MethodPost, "/api/auth/register", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLoginFlow(t *testing.T) {
	a := newAPI(t)
	customer := a.register("c@example.com", "")
	agent := a.register("a@example.com", "agent")

	code, env := a.do(http.MethodPost, "/api/auth/login", doc{"email": "c@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, code)
	body := decode[doc](t, env.Data)
	assert.Equal(t, services.TokenPrefix+customer["id"].(string), body["token"])
	assert.NotContains(t, body["user"], "password")

	code, _ = a.do(http.MethodPost, "/api/auth/login", doc{"email": "c@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodPost, "/api/auth/login", doc{"email": "a@example.com", "password": "pw"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPut, "/api/admin/approve-user/"+agent["id"].(string), nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodPost, "/api/auth/login", doc{"email": "a@example.com", "password": "pw"})
	assert.Equal(t, http.StatusOK, code)
}

// ─── Shops & approval ────────────────────────────────────────────────────────

func TestApproveShopCascadesOverHTTP(t *testing.T) {
	a := newAPI(t)
	owner := a.register("owner@example.com", "shop")
	shopID := owner["shop_id"].(string)

	code, env := a.do(http.MethodPut, "/api/admin/shops/"+shopID+"/approve", nil)
	require.Equal(t, http.StatusOK, code)
	shop := decode[doc](t, env.Data)
	assert.Equal(t, "open", shop["status"])
	assert.Equal(t, false, shop["subscription"].(doc)["active"])

	code, env = a.do(http.MethodGet, "/api/users/"+owner["id"].(string), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "approved", decode[doc](t, env.Data)["status"])

	code, env = a.do(http.MethodGet, "/api/shops", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]doc](t, env.Data), 1)
}

func TestShopCatalogueAndScopedUpdate(t *testing.T) {
	a := newAPI(t)
	code, env := a.do(http.MethodPost, "/api/shops", doc{"name": "One", "status": "open"})
	require.Equal(t, http.StatusCreated, code)
	one := decode[doc](t, env.Data)
	assert.Equal(t, "pending", one["status"])

	_, env = a.do(http.MethodPost, "/api/shops", doc{"name": "Two"})
	two := decode[doc](t, env.Data)

	code, env = a.do(http.MethodPost, "/api/shops/"+one["id"].(string)+"/products", doc{"name": "Tea", "price": 3})
	require.Equal(t, http.StatusCreated, code)
	product := decode[doc](t, env.Data)
	assert.Equal(t, one["id"], product["shop_id"])

	path := "/api/shops/" + two["id"].(string) + "/products/" + product["id"].(string)
	code, _ = a.do(http.MethodPut, path, doc{"price": 1})
	assert.Equal(t, http.StatusNotFound, code)

	path = "/api/shops/" + one["id"].(string) + "/products/" + product["id"].(string)
	code, env = a.do(http.MethodPut, path, doc{"price": 4.5})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.5, decode[doc](t, env.Data)["price"])

	code, env = a.do(http.MethodGet, "/api/shops/"+one["id"].(string)+"/products", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]doc](t, env.Data), 1)

	code, _ = a.do(http.MethodPost, "/api/shops/"+two["id"].(string)+"/products", doc{"name": "Free"})
	assert.Equal(t, http.StatusBadRequest, code)
}

// ─── Orders ──────────────────────────────────────────────────────────────────

func TestOrderLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	_, env := a.do(http.MethodPost, "/api/shops", doc{"name": "Shop"})
	shopID := decode[doc](t, env.Data)["id"].(string)
	customerID := a.register("c@example.com", "customer")["id"].(string)
	agentID := a.register("a@example.com", "agent")["id"].(string)

	code, env := a.do(http.MethodPost, "/api/orders", doc{
		"customer_id":       customerID,
		"shop_id":           shopID,
		"agent_id":          agentID,
		"items":             []doc{{"price": 10, "quantity": 2}, {"price": 5, "quantity": 1}},
		"delivery_fee":      3,
		"total_price":       1,
		"customer_location": doc{"lat": 19.07, "lng": 72.87},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	order := decode[doc](t, env.Data)
	assert.Equal(t, 28.0, order["total_price"])
	assert.Equal(t, "pending", order["status"])
	orderID := order["id"].(string)

	code, env = a.do(http.MethodPut, "/api/orders/"+orderID+"/confirm", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "confirmed", decode[doc](t, env.Data)["status"])

	code, env = a.do(http.MethodPut, "/api/shops/"+shopID+"/orders/"+orderID+"/status", doc{"status": "packed"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "packed", decode[doc](t, env.Data)["status"])

	code, env = a.do(http.MethodPut, "/api/orders/"+orderID+"/delivery-status", doc{"delivery_status": "delivered"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "delivered", decode[doc](t, env.Data)["status"])

	code, env = a.do(http.MethodPut, "/api/orders/"+orderID+"/delivery-status", doc{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "status")

	for _, path := range []string{
		"/api/customers/" + customerID + "/orders",
		"/api/users/" + customerID + "/orders",
		"/api/shops/" + shopID + "/orders",
		"/api/agents/" + agentID + "/orders",
		"/api/admin/orders",
	} {
		code, env = a.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.Len(t, decode[[]doc](t, env.Data), 1, path)
	}

	code, env = a.do(http.MethodGet, "/api/agents/"+agentID+"/earnings", nil)
	require.Equal(t, http.StatusOK, code)
	earnings := decode[doc](t, env.Data)
	assert.Equal(t, 1.0, earnings["totalDeliveries"])
	assert.Equal(t, services.MockTotalEarnings, earnings["totalEarnings"])
	assert.Equal(t, services.MockAverageDeliveryTime, earnings["averageDeliveryTime"])

	code, env = a.do(http.MethodGet, "/api/admin/finances", nil)
	require.Equal(t, http.StatusOK, code)
	summary := decode[doc](t, env.Data)
	assert.Equal(t, 1.0, summary["totalOrders"])
	assert.Equal(t, 28.0, summary["totalRevenue"])
	assert.Equal(t, 2.8, summary["totalCommission"])
}

func TestOrderRejectsBadLocation(t *testing.T) {
	a := newAPI(t)
	_, env := a.do(http.MethodPost, "/api/shops", doc{"name": "Shop"})
	shopID := decode[doc](t, env.Data)["id"].(string)

	code, _ := a.do(http.MethodPost, "/api/orders", doc{
		"customer_id":       "0123456789abcdef01234567",
		"shop_id":           shopID,
		"agent_id":          "fedcba9876543210fedcba98",
		"items":             []doc{{"price": 1}},
		"customer_location": doc{"lat": 1},
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOrderRequiresAgent(t *testing.T) {
	a := newAPI(t)
	_, env := a.do(http.MethodPost, "/api/shops", doc{"name": "Shop"})
	shopID := decode[doc](t, env.Data)["id"].(string)

	code, env := a.do(http.MethodPost, "/api/orders", doc{
		"customer_id": "0123456789abcdef01234567",
		"shop_id":     shopID,
		"items":       []doc{{"price": 10, "quantity": 2}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "agent_id")

	code, env = a.do(http.MethodGet, "/api/admin/orders", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]doc](t, env.Data))
}

func TestUnknownListStatusIsEmpty(t *testing.T) {
	a := newAPI(t)
	a.register("owner@example.com", "shop")
	a.register("agent@example.com", "agent")

	for _, path := range []string{
		"/api/shops?status=approved",
		"/api/admin/shops?status=approved",
		"/api/agents?status=rejected",
		"/api/admin/agents?status=rejected",
	} {
		code, env := a.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.JSONEq(t, `[]`, string(env.Data), path)
	}
}

// ─── Identifiers ─────────────────────────────────────────────────────────────

func TestMalformedIDsReturn400(t *testing.T) {
	a := newAPI(t)

	cases := []struct{ method, path string }{
		{http.MethodGet, "/api/users/not-an-id"},
		{http.MethodGet, "/api/users/123/orders"},
		{http.MethodGet, "/api/customers/xyz/orders"},
		{http.MethodGet, "/api/shops/0123456789abcdef0123456z"},
		{http.MethodPut, "/api/shops/bad"},
		{http.MethodGet, "/api/shops/bad/products"},
		{http.MethodPost, "/api/shops/bad/products"},
		{http.MethodPut, "/api/shops/0123456789abcdef01234567/products/bad"},
		{http.MethodGet, "/api/shops/bad/orders"},
		{http.MethodPut, "/api/shops/0123456789abcdef01234567/orders/bad/status"},
		{http.MethodPut, "/api/orders/bad/confirm"},
		{http.MethodPut, "/api/orders/bad/delivery-status"},
		{http.MethodGet, "/api/agents/bad/earnings"},
		{http.MethodGet, "/api/agents/bad/orders"},
		{http.MethodPut, "/api/admin/shops/bad/approve"},
		{http.MethodPut, "/api/admin/approve-user/bad"},
	}

	for _, tc := range cases {
		body := doc{"name": "x", "price": 1, "status": "open"}
		code, env := a.do(tc.method, tc.path, body)
		assert.Equal(t, http.StatusBadRequest, code, "%s %s: %s", tc.method, tc.path, env.Message)
	}
}

// ─── Uploads ─────────────────────────────────────────────────────────────────

func multipartBody(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadImage(t *testing.T) {
	a := newAPI(t)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	code, env := a.serve(multipartBody(t, "file", "avatar.png", png))
	require.Equal(t, http.StatusOK, code, env.Message)
	url := decode[map[string]string](t, env.Data)["url"]
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/storage/images/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)
}

func TestUploadWithoutFile(t *testing.T) {
	a := newAPI(t)

	code, env := a.serve(multipartBody(t, "other", "avatar.png", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No file uploaded", env.Message)

	code, _ = a.do(http.MethodPost, "/api/upload/image", doc{"file": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.serve(multipartBody(t, "file", "notes.txt", []byte("plain text, not an image")))
	assert.Equal(t, http.StatusBadRequest, code)
}
