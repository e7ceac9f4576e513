package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
	"github.com/igaue-takahiko/food-delivery-app/internal/auth"
	"github.com/igaue-takahiko/food-delivery-app/internal/handler"
	"github.com/igaue-takahiko/food-delivery-app/internal/metrics"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
	"github.com/igaue-takahiko/food-delivery-app/internal/realtime"
	"github.com/igaue-takahiko/food-delivery-app/internal/service"
)

type stubOrders struct {
	gotAccount string
	gotRole    model.Role
	gotOrderID string
	gotStatus  string
	orders     []model.Order
	err        error
}

func (s *stubOrders) Checkout(_ context.Context, accountID string) ([]model.Order, error) {
	s.gotAccount = accountID
	return s.orders, s.err
}

func (s *stubOrders) ListOrders(_ context.Context, accountID string, role model.Role) ([]model.Order, error) {
	s.gotAccount, s.gotRole = accountID, role
	return s.orders, s.err
}

func (s *stubOrders) UpdateStatus(_ context.Context, orderID, status string) (*model.Order, error) {
	s.gotOrderID, s.gotStatus = orderID, status
	if s.err != nil {
		return nil, s.err
	}
	return &model.Order{ID: orderID, Status: model.OrderStatus(status)}, nil
}

type stubCarts struct {
	added string
	view  *service.CartView
	err   error
}

func (s *stubCarts) AddItem(_ context.Context, _, itemID string) error {
	s.added = itemID
	return s.err
}
func (s *stubCarts) ReduceItem(context.Context, string, string) error { return s.err }
func (s *stubCarts) RemoveItem(context.Context, string, string) error { return s.err }
func (s *stubCarts) View(context.Context, string) (*service.CartView, error) {
	return s.view, s.err
}

type stubRestaurants struct {
	sellers []model.Seller
}

func (s *stubRestaurants) List(context.Context) ([]model.Seller, error) { return s.sellers, nil }
func (s *stubRestaurants) Get(_ context.Context, id string) (*model.Seller, error) {
	for _, sl := range s.sellers {
		if sl.ID == id {
			return &sl, nil
		}
	}
	return nil, apperr.NotFound("Seller not found.")
}
func (s *stubRestaurants) Nearby(context.Context, float64, float64) ([]model.Seller, error) {
	return s.sellers, nil
}

type stubProfiles struct {
	addr model.Address
}

func (s *stubProfiles) UpdateAddress(_ context.Context, accountID string, addr model.Address, formatted string) (*model.User, error) {
	s.addr = addr
	return &model.User{ID: "u1", AccountID: accountID, Address: &addr, FormattedAddress: formatted}, nil
}

func (s *stubProfiles) Me(_ context.Context, accountID string, role model.Role) (*service.Profile, error) {
	return &service.Profile{Account: &model.Account{ID: accountID, Role: role}}, nil
}

type testServer struct {
	h        *handler.Handler
	tokens   *auth.Manager
	orders   *stubOrders
	carts    *stubCarts
	profiles *stubProfiles
	registry *realtime.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		tokens:   auth.NewManager("test-secret", time.Hour),
		orders:   &stubOrders{},
		carts:    &stubCarts{},
		profiles: &stubProfiles{},
		registry: realtime.NewRegistry(),
	}
	log := zap.NewNop()
	m := metrics.New("test")
	hub := realtime.NewHub(ts.registry, "*", log, m)
	t.Cleanup(hub.Close)

	ts.h = handler.NewHandler(handler.Deps{
		Orders:   ts.orders,
		Carts:    ts.carts,
		Profiles: ts.profiles,
		Restaurants: &stubRestaurants{sellers: []model.Seller{
			{ID: "s1", Name: "Noodle Bar", IsVerified: true},
		}},
		Auth:          ts.tokens,
		Realtime:      hub,
		Clients:       ts.registry,
		ClientBaseURL: "http://localhost:3000",
		Log:           log,
		Metrics:       m,
	})
	return ts
}

func (ts *testServer) token(t *testing.T, role model.Role) string {
	t.Helper()
	tok, err := ts.tokens.Issue("acc-1", role)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestPlaceOrder_RequiresAuthentication(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/order", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated.", decodeBody(t, rec)["message"])

	rec = ts.do(t, http.MethodPost, "/order", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrder_RejectsSeller(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/order", ts.token(t, model.RoleSeller), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.orders = []model.Order{
		{ID: "o1", Status: model.StatusPlaced, Seller: model.SellerSnapshot{SellerID: "s1"}},
		{ID: "o2", Status: model.StatusPlaced, Seller: model.SellerSnapshot{SellerID: "s2"}},
	}

	rec := ts.do(t, http.MethodPost, "/order", ts.token(t, model.RoleUser), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acc-1", ts.orders.gotAccount)

	var body struct {
		Orders []model.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Orders, 2)
	assert.Equal(t, "o1", body.Orders[0].ID)
	assert.Equal(t, model.StatusPlaced, body.Orders[1].Status)
}

func TestPlaceOrder_InternalErrorHidesDetails(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.err = errors.New("connection refused")

	rec := ts.do(t, http.MethodPost, "/order", ts.token(t, model.RoleUser), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error.", decodeBody(t, rec)["message"])
}

func TestListOrders_PassesRole(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/orders", ts.token(t, model.RoleSeller), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleSeller, ts.orders.gotRole)

	rec = ts.do(t, http.MethodGet, "/orders", ts.token(t, model.RoleAdmin), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/order-status/o1", ts.token(t, model.RoleSeller),
		map[string]string{"status": "OUT_FOR_DELIVERY"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o1", ts.orders.gotOrderID)
	assert.Equal(t, "OUT_FOR_DELIVERY", ts.orders.gotStatus)

	updated := decodeBody(t, rec)["updatedOrder"].(map[string]any)
	assert.Equal(t, "OUT_FOR_DELIVERY", updated["status"])
}

func TestUpdateOrderStatus_MissingStatus(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/order-status/o1", ts.token(t, model.RoleUser), map[string]string{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "status", errs[0].(map[string]any)["field"])
	assert.Empty(t, ts.orders.gotOrderID)
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.err = apperr.NotFound("Order not found.")

	rec := ts.do(t, http.MethodPost, "/order-status/nope", ts.token(t, model.RoleUser),
		map[string]string{"status": "DELIVERED"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found.", decodeBody(t, rec)["message"])
}

func TestConnectedClients(t *testing.T) {
	ts := newTestServer(t)
	ts.registry.Register("s1", "session-1")

	rec := ts.do(t, http.MethodGet, "/clients/connected", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"s1": "session-1"}, decodeBody(t, rec)["clients"])
}

func TestCart(t *testing.T) {
	ts := newTestServer(t)
	ts.carts.view = &service.CartView{
		Lines:      []service.CartLine{{Item: model.Item{ID: "a", Price: decimal.NewFromInt(10)}, Quantity: 2}},
		TotalPrice: decimal.NewFromInt(20),
	}
	tok := ts.token(t, model.RoleUser)

	rec := ts.do(t, http.MethodPost, "/cart", tok, map[string]string{"itemId": "a"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a", ts.carts.added)

	rec = ts.do(t, http.MethodGet, "/cart", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "20", body["totalPrice"])
	assert.Len(t, body["cart"], 1)

	ts.carts.err = apperr.NotFound("Item is not in the cart.")
	rec = ts.do(t, http.MethodPost, "/cart/remove/zzz", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/cart/delete", tok, map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateAddress_Validation(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, model.RoleUser)

	rec := ts.do(t, http.MethodPost, "/user/address", tok, map[string]any{
		"phoneNo":  "12345",
		"street":   "1-2-3",
		"locality": "Shibuya",
		"zip":      "1500000",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decodeBody(t, rec)["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "phoneNo", errs[0].(map[string]any)["field"])

	rec = ts.do(t, http.MethodPost, "/user/address", tok, map[string]any{
		"phoneNo":          "0901234567",
		"street":           "1-2-3",
		"locality":         "Shibuya",
		"zip":              "1500000",
		"formattedAddress": "1-2-3 Shibuya",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0901234567", ts.profiles.addr.PhoneNo)
}

func TestRestaurants(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/restaurants", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["totalItems"])

	rec = ts.do(t, http.MethodGet, "/restaurant/s1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/restaurant/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/restaurants-location/north/139.7", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodGet, "/restaurants-location/35.68/139.76", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBrotliCompression(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/restaurants", nil)
	req.Header.Set("Accept-Encoding", "br")
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))

	raw, err := io.ReadAll(brotli.NewReader(rec.Body))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Contains(t, body, "restaurants")
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodOptions, "/order", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/health", "", nil)

	rec := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}
