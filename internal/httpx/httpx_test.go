package httpx

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/albaqer/gemstone-ecom/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	gin.DefaultErrorWriter = io.Discard
	log.SetOutput(io.Discard)
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

type fakeTokens map[string]auth.Actor

func (f fakeTokens) Parse(raw string) (auth.Actor, error) {
	a, ok := f[raw]
	if !ok {
		return auth.Actor{}, auth.ErrInvalidToken
	}
	return a, nil
}

func newProtected() *gin.Engine {
	r := NewRouter("test")
	tokens := fakeTokens{
		"cust":  {ID: "u1", Role: auth.RoleCustomer},
		"admin": {ID: "a1", Role: auth.RoleAdmin},
	}
	g := r.Group("/", Authenticate(tokens))
	g.GET("/me", func(c *gin.Context) {
		a, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": a.ID})
	})
	g.GET("/admin", RequireRole(auth.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r := newProtected()
	if w := do(r, http.MethodGet, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status=%d", w.Code)
	}
	if w := do(r, http.MethodGet, "/me", "bogus"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status=%d", w.Code)
	}
	w := do(r, http.MethodGet, "/me", "cust")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"u1"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	r := newProtected()
	if w := do(r, http.MethodGet, "/admin", "cust"); w.Code != http.StatusForbidden {
		t.Fatalf("customer: status=%d", w.Code)
	}
	if w := do(r, http.MethodGet, "/admin", "admin"); w.Code != http.StatusNoContent {
		t.Fatalf("admin: status=%d", w.Code)
	}
}

func TestRequestID_EchoesOrGenerates(t *testing.T) {
	r := NewRouter("test")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Fatalf("rid=%q", got)
	}
	w = do(r, http.MethodGet, "/healthz", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewRouter("test")
	do(r, http.MethodGet, "/healthz", "")
	w := do(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_request_duration_seconds") {
		t.Fatalf("status=%d", w.Code)
	}
}

type bindReq struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

func TestRespondValidation(t *testing.T) {
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var req bindReq
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondValidation(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"quantity":0}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "product_id is required") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) { RespondError(c, http.StatusInternalServerError, "boom", errors.New("pq: secret")) })
	w := do(r, http.MethodGet, "/boom", "")
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "secret") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestSnake(t *testing.T) {
	for in, want := range map[string]string{
		"ProductID":     "product_id",
		"DeliveryManID": "delivery_man_id",
		"Quantity":      "quantity",
		"HTTPStatus":    "http_status",
	} {
		if got := snake(in); got != want {
			t.Fatalf("snake(%q)=%q want %q", in, got, want)
		}
	}
}
