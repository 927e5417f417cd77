package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/albaqer/gemstone-ecom/internal/auth"
	prod "github.com/albaqer/gemstone-ecom/internal/product"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

//
// ===== in-memory stub (implements product.Repository) =====
//

type stubRepo struct {
	items     map[string]*prod.Product
	lastQuery prod.Query
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: make(map[string]*prod.Product)}
}

func (s *stubRepo) sorted() []prod.Product {
	out := make([]prod.Product, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stubRepo) List(_ context.Context, q prod.Query) ([]prod.Product, error) {
	s.lastQuery = q
	out := []prod.Product{}
	for _, v := range s.sorted() {
		if q.Q != "" && !containsFold(v.Name, q.Q) && !containsFold(v.Description, q.Q) {
			continue
		}
		out = append(out, v)
	}
	start := q.Offset
	if start > len(out) {
		return []prod.Product{}, nil
	}
	end := start + q.Limit
	if end > len(out) || q.Limit <= 0 {
		end = len(out)
	}
	return out[start:end], nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*prod.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, prod.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) Create(_ context.Context, p *prod.Product) error {
	cp := *p
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.items[p.ID] = &cp
	return nil
}

func (s *stubRepo) Update(_ context.Context, p *prod.Product) error {
	if _, ok := s.items[p.ID]; !ok {
		return prod.ErrNotFound
	}
	cp := *p
	cp.UpdatedAt = time.Now().UTC()
	s.items[p.ID] = &cp
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *stubRepo) LowStock(_ context.Context, threshold int) ([]prod.Product, error) {
	out := []prod.Product{}
	for _, v := range s.sorted() {
		if v.QuantityInStock < threshold {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QuantityInStock < out[j].QuantityInStock })
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func seed(repo *stubRepo, id, name string, price string, qty int) {
	_ = repo.Create(context.Background(), &prod.Product{
		ID: id, Name: name, Type: prod.TypeRing, Price: decimal.RequireFromString(price), QuantityInStock: qty,
	})
}

//
// ===== router + helpers =====
//

var tokens = auth.NewTokens("test-secret", time.Hour)

func newRouter(repo prod.Repository) *gin.Engine {
	r := gin.New()
	registerRoutes(r, repo, tokens, 10)
	return r
}

func send(t *testing.T, r http.Handler, method, path string, role auth.Role, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		tok, err := tokens.Issue(auth.Actor{ID: "u-" + string(role), Email: string(role) + "@example.com", Role: role})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

//
// ===== TESTS =====
//

func TestListProducts_PaginationOnly_NoSearch(t *testing.T) {
	repo := newStubRepo()
	for i := 1; i <= 3; i++ {
		seed(repo, fmt.Sprintf("%d", i), fmt.Sprintf("Ring %d", i), "10.00", 5)
	}
	r := newRouter(repo)

	w := send(t, r, http.MethodGet, "/products?limit=2&offset=1&q=ignored", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got prod.ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Items) != 2 || got.Limit != 2 || got.Offset != 1 {
		t.Fatalf("got=%+v", got)
	}
	if repo.lastQuery.Q != "" {
		t.Fatalf("list must not search; Q=%q", repo.lastQuery.Q)
	}
}

func TestSearchProducts_RequiresQAndFilters(t *testing.T) {
	repo := newStubRepo()
	seed(repo, "a", "Moonstone Ring", "99.90", 5)
	seed(repo, "b", "Garnet Bracelet", "149.90", 3)
	r := newRouter(repo)

	if w := send(t, r, http.MethodGet, "/products/search", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing q: status=%d", w.Code)
	}
	if w := send(t, r, http.MethodGet, "/products/search?q=m", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("short q: status=%d", w.Code)
	}

	w := send(t, r, http.MethodGet, "/products/search?q=moon", "", "")
	var got prod.ListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if w.Code != http.StatusOK || got.Q != "moon" || len(got.Items) != 1 || got.Items[0].ID != "a" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetProduct_OK_And_NotFound(t *testing.T) {
	repo := newStubRepo()
	seed(repo, "x", "Emerald Studs", "149.90", 7)
	r := newRouter(repo)

	w := send(t, r, http.MethodGet, "/products/x", "", "")
	var p prod.Product
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if w.Code != http.StatusOK || !p.Price.Equal(decimal.RequireFromString("149.9")) || p.QuantityInStock != 7 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := send(t, r, http.MethodGet, "/products/nope", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCreateProduct_AdminOnlyAndValidated(t *testing.T) {
	repo := newStubRepo()
	r := newRouter(repo)
	valid := `{"name":"Sapphire Halo","type":"ring","price":"1899.00","quantity_in_stock":4}`

	if w := send(t, r, http.MethodPost, "/products", "", valid); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status=%d", w.Code)
	}
	if w := send(t, r, http.MethodPost, "/products", auth.RoleManager, valid); w.Code != http.StatusForbidden {
		t.Fatalf("manager: status=%d", w.Code)
	}
	w := send(t, r, http.MethodPost, "/products", auth.RoleAdmin, valid)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if len(repo.items) != 1 {
		t.Fatalf("items=%d", len(repo.items))
	}

	for name, body := range map[string]string{
		"missing price":  `{"name":"X","quantity_in_stock":1}`,
		"negative stock": `{"name":"X","price":"1.00","quantity_in_stock":-1}`,
		"negative price": `{"name":"X","price":"-1.00","quantity_in_stock":1}`,
		"unknown type":   `{"name":"X","type":"crown","price":"1.00"}`,
	} {
		if w := send(t, r, http.MethodPost, "/products", auth.RoleAdmin, body); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%s", name, w.Code, w.Body.String())
		}
	}
}

func TestUpdateProduct_PartialKeepsOmittedFields(t *testing.T) {
	repo := newStubRepo()
	seed(repo, "p", "Topaz Pendant", "10.00", 5)
	r := newRouter(repo)

	w := send(t, r, http.MethodPut, "/products/p", auth.RoleAdmin, `{"name":"Blue Topaz Pendant"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got, _ := repo.GetByID(context.Background(), "p")
	if got.Name != "Blue Topaz Pendant" || !got.Price.Equal(decimal.RequireFromString("10")) || got.QuantityInStock != 5 {
		t.Fatalf("partial update touched other fields: %+v", got)
	}

	send(t, r, http.MethodPut, "/products/p", auth.RoleAdmin, `{"price":"12.50","quantity_in_stock":0}`)
	got, _ = repo.GetByID(context.Background(), "p")
	if !got.Price.Equal(decimal.RequireFromString("12.5")) || got.QuantityInStock != 0 {
		t.Fatalf("update not applied: %+v", got)
	}

	if w := send(t, r, http.MethodPut, "/products/p", auth.RoleAdmin, `{"quantity_in_stock":-3}`); w.Code != http.StatusBadRequest {
		t.Fatalf("negative stock: status=%d", w.Code)
	}
	if w := send(t, r, http.MethodPut, "/products/nope", auth.RoleAdmin, `{"name":"x"}`); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}
}

func TestDeleteProduct_OK_And_NotFound(t *testing.T) {
	repo := newStubRepo()
	seed(repo, "del", "X", "1.00", 1)
	r := newRouter(repo)

	if w := send(t, r, http.MethodDelete, "/products/del", auth.RoleAdmin, ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := send(t, r, http.MethodDelete, "/products/del", auth.RoleAdmin, ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestLowStockReport(t *testing.T) {
	repo := newStubRepo()
	seed(repo, "a", "Out", "1.00", 0)
	seed(repo, "b", "Critical", "1.00", 2)
	seed(repo, "c", "Low", "1.00", 8)
	seed(repo, "d", "Warning", "1.00", 12)
	seed(repo, "e", "Plenty", "1.00", 50)
	r := newRouter(repo)

	if w := send(t, r, http.MethodGet, "/products/inventory/low-stock", auth.RoleCustomer, ""); w.Code != http.StatusForbidden {
		t.Fatalf("customer: status=%d", w.Code)
	}

	w := send(t, r, http.MethodGet, "/products/inventory/low-stock", auth.RoleAdmin, "")
	var rep prod.LowStockReport
	_ = json.Unmarshal(w.Body.Bytes(), &rep)
	if w.Code != http.StatusOK || rep.Summary.Threshold != 10 || rep.Summary.TotalLowStockProducts != 3 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = send(t, r, http.MethodGet, "/products/inventory/low-stock?threshold=20", auth.RoleAdmin, "")
	_ = json.Unmarshal(w.Body.Bytes(), &rep)
	if rep.Summary.WarningCount != 1 || rep.Products.Warning[0].ID != "d" || rep.AllProducts[0].ID != "a" {
		t.Fatalf("body=%s", w.Body.String())
	}

	if w := send(t, r, http.MethodGet, "/products/inventory/low-stock?threshold=abc", auth.RoleAdmin, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad threshold: status=%d", w.Code)
	}
}
