package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/albaqer/gemstone-ecom/internal/auth"
	"github.com/albaqer/gemstone-ecom/internal/httpx"
	ord "github.com/albaqer/gemstone-ecom/internal/order"
	"github.com/albaqer/gemstone-ecom/internal/order/ordertest"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

//
// ---------- STUBS & FAKES ----------
//

// fakeUsers implements ord.UserDirectory with a fixed id -> role table.
type fakeUsers map[string]string

func (f fakeUsers) ValidateUser(_ context.Context, id string) (bool, error) {
	_, ok := f[id]
	return ok, nil
}

func (f fakeUsers) Role(_ context.Context, id string) (string, error) {
	r, ok := f[id]
	if !ok {
		return "", ord.ErrUnknownUser
	}
	return r, nil
}

var actors = map[string]auth.Actor{
	"alice": {ID: "alice", Email: "alice@example.com", Role: auth.RoleCustomer},
	"bob":   {ID: "bob", Email: "bob@example.com", Role: auth.RoleCustomer},
	"admin": {ID: "admin", Email: "admin@example.com", Role: auth.RoleAdmin},
	"mgr":   {ID: "mgr", Email: "mgr@example.com", Role: auth.RoleManager},
	"dm1":   {ID: "dm1", Email: "dm1@example.com", Role: auth.RoleDeliveryMan},
	"dm2":   {ID: "dm2", Email: "dm2@example.com", Role: auth.RoleDeliveryMan},
}

type harness struct {
	t      *testing.T
	r      *gin.Engine
	store  *ordertest.Store
	tokens *auth.Tokens
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	users := fakeUsers{}
	for id, a := range actors {
		users[id] = string(a.Role)
	}
	store := ordertest.New()
	store.AddProduct("ruby", "Ruby Ring", decimal.RequireFromString("250.00"), 6)
	store.AddProduct("opal", "Opal Pendant", decimal.RequireFromString("120.00"), 1)

	tokens := auth.NewTokens("test-secret", time.Hour)
	r := httpx.NewRouter("order-service-test")
	registerRoutes(r, ord.NewService(store, users), tokens)
	return &harness{t: t, r: r, store: store, tokens: tokens}
}

func (h *harness) do(method, path, as string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		tok, err := h.tokens.Issue(actors[as])
		if err != nil {
			h.t.Fatalf("issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func (h *harness) createOrder(as string, items ...gin.H) ord.CreateResult {
	h.t.Helper()
	w := h.do(http.MethodPost, "/orders", as, gin.H{"total_amount": "10", "items": items})
	if w.Code != http.StatusCreated {
		h.t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var res ord.CreateResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		h.t.Fatalf("invalid json: %v", err)
	}
	return res
}

//
// ---------- TESTS ----------
//

func TestCreateOrder_HappyPath(t *testing.T) {
	h := newHarness(t)

	res := h.createOrder("alice", gin.H{"product_id": "ruby", "quantity": 2})
	if res.Order.UserID != "alice" || res.Order.Status != ord.StatusPending {
		t.Fatalf("order=%+v", res.Order)
	}
	if len(res.Items) != 1 || !res.Items[0].PriceAtPurchase.Equal(decimal.RequireFromString("250")) {
		t.Fatalf("items=%+v", res.Items)
	}
	if got := h.store.Stock("ruby"); got != 4 {
		t.Fatalf("stock=%d, want 4", got)
	}
	if len(res.LowStockWarnings) != 1 || res.LowStockWarnings[0].RemainingAfterOrder != 4 {
		t.Fatalf("warnings=%+v", res.LowStockWarnings)
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/orders", "alice", gin.H{"items": []gin.H{
		{"product_id": "opal", "quantity": 3},
		{"product_id": "ghost", "quantity": 1},
	}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body ord.StockErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.StockIssues) != 2 || body.StockIssues[0].Available != 1 || body.StockIssues[1].Issue != ord.IssueProductNotFound {
		t.Fatalf("issues=%+v", body.StockIssues)
	}
	if h.store.Stock("opal") != 1 || h.store.OrderCount() != 0 {
		t.Fatal("failed validation must not mutate anything")
	}
}

func TestCreateOrder_ValidationAndAuth(t *testing.T) {
	h := newHarness(t)

	if w := h.do(http.MethodPost, "/orders", "", gin.H{}); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status=%d", w.Code)
	}
	if w := h.do(http.MethodPost, "/orders", "alice", gin.H{"items": []gin.H{}}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty items: status=%d body=%s", w.Code, w.Body.String())
	}
	w := h.do(http.MethodPost, "/orders", "alice", gin.H{"items": []gin.H{
		{"product_id": "ruby", "quantity": 1},
		{"product_id": "ruby", "quantity": 1},
	}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate product: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetOrder_VisibilityAndNotFound(t *testing.T) {
	h := newHarness(t)
	res := h.createOrder("alice", gin.H{"product_id": "ruby", "quantity": 1})
	path := "/orders/" + res.Order.ID

	for _, tc := range []struct {
		as   string
		want int
	}{{"alice", 200}, {"admin", 200}, {"mgr", 200}, {"bob", 403}, {"dm1", 403}} {
		if w := h.do(http.MethodGet, path, tc.as, nil); w.Code != tc.want {
			t.Fatalf("%s: status=%d, want %d", tc.as, w.Code, tc.want)
		}
	}
	if w := h.do(http.MethodGet, "/orders/nope", "admin", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}

	w := h.do(http.MethodGet, path+"/items", "alice", nil)
	var items []ord.Item
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if w.Code != http.StatusOK || len(items) != 1 || items[0].ProductID != "ruby" {
		t.Fatalf("items: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateOrderStatus_CancelRestocksOnce(t *testing.T) {
	h := newHarness(t)
	res := h.createOrder("alice", gin.H{"product_id": "ruby", "quantity": 3})
	path := "/orders/" + res.Order.ID + "/status"

	if w := h.do(http.MethodPut, path, "alice", gin.H{"status": "cancelled"}); w.Code != http.StatusForbidden {
		t.Fatalf("customer: status=%d", w.Code)
	}
	if w := h.do(http.MethodPut, path, "mgr", gin.H{"status": "shipped"}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: status=%d", w.Code)
	}
	if w := h.do(http.MethodPut, path, "mgr", gin.H{"status": "confirmed"}); w.Code != http.StatusOK {
		t.Fatalf("confirm: status=%d body=%s", w.Code, w.Body.String())
	}

	w := h.do(http.MethodPut, path, "mgr", gin.H{"status": "pending"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("backward: status=%d", w.Code)
	}
	var back map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &back)
	if back["current_status"] != "confirmed" || back["attempted_status"] != "pending" {
		t.Fatalf("body=%s", w.Body.String())
	}

	for i := 0; i < 2; i++ {
		w = h.do(http.MethodPut, path, "admin", gin.H{"status": "cancelled"})
		if w.Code != http.StatusOK {
			t.Fatalf("cancel #%d: status=%d body=%s", i, w.Code, w.Body.String())
		}
	}
	if got := h.store.Stock("ruby"); got != 6 {
		t.Fatalf("stock=%d, want 6", got)
	}
}

func TestUpdateOrderStatus_DeliveryManScope(t *testing.T) {
	h := newHarness(t)
	res := h.createOrder("alice", gin.H{"product_id": "ruby", "quantity": 1})
	id := res.Order.ID

	if w := h.do(http.MethodPut, "/orders/"+id+"/assign-delivery", "mgr", gin.H{"delivery_man_id": "bob"}); w.Code != http.StatusBadRequest {
		t.Fatalf("assign to customer: status=%d", w.Code)
	}
	if w := h.do(http.MethodPut, "/orders/"+id+"/assign-delivery", "mgr", gin.H{"delivery_man_id": "dm1"}); w.Code != http.StatusOK {
		t.Fatalf("assign: status=%d body=%s", w.Code, w.Body.String())
	}

	if w := h.do(http.MethodPut, "/orders/"+id+"/status", "dm2", gin.H{"status": "in_transit"}); w.Code != http.StatusForbidden {
		t.Fatalf("other delivery man: status=%d", w.Code)
	}
	if w := h.do(http.MethodPut, "/orders/"+id+"/status", "dm1", gin.H{"status": "cancelled"}); w.Code != http.StatusForbidden {
		t.Fatalf("delivery man cancel: status=%d", w.Code)
	}
	if w := h.do(http.MethodPut, "/orders/"+id+"/status", "dm1", gin.H{"status": "in_transit", "tracking_number": "TRK-1"}); w.Code != http.StatusOK {
		t.Fatalf("in_transit: status=%d body=%s", w.Code, w.Body.String())
	}

	w := h.do(http.MethodGet, "/orders/delivery/my-deliveries", "dm1", nil)
	var mine []ord.Order
	_ = json.Unmarshal(w.Body.Bytes(), &mine)
	if len(mine) != 1 || mine[0].Status != ord.StatusInTransit || mine[0].TrackingNumber == nil {
		t.Fatalf("my deliveries=%s", w.Body.String())
	}
	if w := h.do(http.MethodGet, "/orders/"+id+"/status", "dm1", nil); w.Code != http.StatusOK {
		t.Fatalf("status view: status=%d", w.Code)
	}
	if w := h.do(http.MethodGet, "/orders/delivery/my-deliveries", "alice", nil); w.Code != http.StatusForbidden {
		t.Fatalf("customer deliveries: status=%d", w.Code)
	}
}

func TestAssignDelivery_TerminalAndPending(t *testing.T) {
	h := newHarness(t)
	a := h.createOrder("alice", gin.H{"product_id": "ruby", "quantity": 1})
	b := h.createOrder("bob", gin.H{"product_id": "opal", "quantity": 1})

	h.do(http.MethodPut, "/orders/"+a.Order.ID+"/status", "mgr", gin.H{"status": "confirmed"})
	h.do(http.MethodPut, "/orders/"+b.Order.ID+"/status", "mgr", gin.H{"status": "cancelled"})

	w := h.do(http.MethodGet, "/orders/manager/pending", "mgr", nil)
	var pending []ord.Order
	_ = json.Unmarshal(w.Body.Bytes(), &pending)
	if len(pending) != 1 || pending[0].ID != a.Order.ID {
		t.Fatalf("pending=%s", w.Body.String())
	}

	if w := h.do(http.MethodPut, "/orders/"+b.Order.ID+"/assign-delivery", "mgr", gin.H{"delivery_man_id": "dm1"}); w.Code != http.StatusConflict {
		t.Fatalf("assign cancelled: status=%d", w.Code)
	}
	if w := h.do(http.MethodPut, "/orders/"+a.Order.ID+"/assign-delivery", "alice", gin.H{"delivery_man_id": "dm1"}); w.Code != http.StatusForbidden {
		t.Fatalf("customer assign: status=%d", w.Code)
	}
	h.do(http.MethodPut, "/orders/"+a.Order.ID+"/assign-delivery", "admin", gin.H{"delivery_man_id": "dm1"})
	w = h.do(http.MethodPut, "/orders/"+a.Order.ID+"/unassign-delivery", "mgr", nil)
	var o ord.Order
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if w.Code != http.StatusOK || o.Status != ord.StatusConfirmed || o.DeliveryManID != nil {
		t.Fatalf("unassign: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteOrder_RestoresUnlessCancelled(t *testing.T) {
	h := newHarness(t)
	res := h.createOrder("alice", gin.H{"product_id": "ruby", "quantity": 2})

	if w := h.do(http.MethodDelete, "/orders/"+res.Order.ID, "mgr", nil); w.Code != http.StatusForbidden {
		t.Fatalf("manager delete: status=%d", w.Code)
	}
	w := h.do(http.MethodDelete, "/orders/"+res.Order.ID, "admin", nil)
	var del ord.DeleteResult
	_ = json.Unmarshal(w.Body.Bytes(), &del)
	if w.Code != http.StatusOK || !del.Deleted || !del.StockRestored {
		t.Fatalf("delete: status=%d body=%s", w.Code, w.Body.String())
	}
	if got := h.store.Stock("ruby"); got != 6 {
		t.Fatalf("stock=%d, want 6", got)
	}
	if w := h.do(http.MethodDelete, "/orders/"+res.Order.ID, "admin", nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status=%d", w.Code)
	}
}

func TestListOrders_Scoping(t *testing.T) {
	h := newHarness(t)
	h.createOrder("alice", gin.H{"product_id": "ruby", "quantity": 1})
	h.createOrder("bob", gin.H{"product_id": "ruby", "quantity": 1})

	var mine []ord.Order
	w := h.do(http.MethodGet, "/orders/my-orders", "alice", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &mine)
	if len(mine) != 1 || mine[0].UserID != "alice" {
		t.Fatalf("my-orders=%s", w.Body.String())
	}

	if w := h.do(http.MethodGet, "/orders/all", "alice", nil); w.Code != http.StatusForbidden {
		t.Fatalf("customer list all: status=%d", w.Code)
	}
	var all []ord.Order
	w = h.do(http.MethodGet, "/orders/all?limit=10", "admin", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &all)
	if len(all) != 2 {
		t.Fatalf("all=%s", w.Body.String())
	}
}

func TestDeliveryManOrders_RejectsNonDeliveryMen(t *testing.T) {
	h := newHarness(t)
	a := h.createOrder("alice", gin.H{"product_id": "ruby", "quantity": 1})
	h.do(http.MethodPut, "/orders/"+a.Order.ID+"/status", "mgr", gin.H{"status": "confirmed"})
	h.do(http.MethodPut, "/orders/"+a.Order.ID+"/assign-delivery", "mgr", gin.H{"delivery_man_id": "dm1"})

	for _, id := range []string{"alice", "ghost"} {
		if w := h.do(http.MethodGet, "/orders/manager/delivery-man/"+id, "mgr", nil); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%s", id, w.Code, w.Body.String())
		}
	}
	w := h.do(http.MethodGet, "/orders/manager/delivery-man/dm1", "mgr", nil)
	var out []ord.Order
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if w.Code != http.StatusOK || len(out) != 1 || out[0].ID != a.Order.ID {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := h.do(http.MethodGet, "/orders/manager/delivery-man/dm2", "mgr", nil); w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("dm2: status=%d body=%s", w.Code, w.Body.String())
	}
}
