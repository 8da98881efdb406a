package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Quocthai23/lumiere-storefront/internal/cart"
	"github.com/Quocthai23/lumiere-storefront/internal/kv"
	"github.com/Quocthai23/lumiere-storefront/internal/voucher"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type memoryKV struct {
	m    sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (f *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	f.m.Lock()
	defer f.m.Unlock()
	data, ok := f.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return data, nil
}

func (f *memoryKV) Set(_ context.Context, key string, value []byte) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.data[key] = value
	return nil
}

func (f *memoryKV) Delete(_ context.Context, key string) error {
	f.m.Lock()
	defer f.m.Unlock()
	delete(f.data, key)
	return nil
}

// --- helpers ---

func withSession(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), ctxKeySessionID{}, "session-1")
	return r.WithContext(ctx)
}

func withVariantID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("variant_id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func newCartHandler() *CartHandler {
	carts := cart.NewManager(newMemoryKV(), voucher.DefaultResolver())
	return NewCartHandler(carts, 5*time.Second)
}

func addItemBody() string {
	return `{"product_id":"p-1","product_name":"Velvet Lipstick","variant_id":"v-1","variant_name":"Rouge","unit_price":150000,"quantity":2}`
}

// --- AddItem tests ---

func TestAddItem_Success(t *testing.T) {
	h := newCartHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(addItemBody())))
	w := httptest.NewRecorder()
	h.AddItem(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, int64(300_000), resp.Subtotal)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "v-1", resp.Items[0].Variant.ID)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	h := newCartHandler()

	body := `{"product_id":"p-1","variant_id":"v-1","unit_price":150000,"quantity":0}`
	req := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body)))
	w := httptest.NewRecorder()
	h.AddItem(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "invalid_quantity", resp.Code)
}

func TestAddItem_InvalidJSON(t *testing.T) {
	h := newCartHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{broken`)))
	w := httptest.NewRecorder()
	h.AddItem(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItem_MissingSession(t *testing.T) {
	h := newCartHandler()

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(addItemBody()))
	w := httptest.NewRecorder()
	h.AddItem(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- UpdateQuantity / RemoveItem tests ---

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	h := newCartHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(addItemBody())))
	h.AddItem(httptest.NewRecorder(), req)

	update := withSession(httptest.NewRequest(http.MethodPut, "/cart/items/v-1", strings.NewReader(`{"quantity":0}`)))
	update = withVariantID(update, "v-1")
	w := httptest.NewRecorder()
	h.UpdateQuantity(w, update)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Items)
}

func TestRemoveItem_AbsentVariantIsOK(t *testing.T) {
	h := newCartHandler()

	req := withSession(httptest.NewRequest(http.MethodDelete, "/cart/items/v-404", nil))
	req = withVariantID(req, "v-404")
	w := httptest.NewRecorder()
	h.RemoveItem(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Voucher tests ---

func TestApplyVoucher_ValidCode(t *testing.T) {
	h := newCartHandler()

	add := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(addItemBody())))
	h.AddItem(httptest.NewRecorder(), add)

	req := withSession(httptest.NewRequest(http.MethodPost, "/cart/voucher", strings.NewReader(`{"code":"lumiere10"}`)))
	w := httptest.NewRecorder()
	h.ApplyVoucher(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Applied bool            `json:"applied"`
		Message string          `json:"message"`
		Cart    CartResponseDTO `json:"cart"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Applied)
	assert.Equal(t, int64(30_000), resp.Cart.VoucherDiscount)
	assert.Equal(t, int64(270_000), resp.Cart.Total)
}

func TestApplyVoucher_InvalidCodeStill200(t *testing.T) {
	h := newCartHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/cart/voucher", strings.NewReader(`{"code":"BOGUS"}`)))
	w := httptest.NewRecorder()
	h.ApplyVoucher(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Applied bool   `json:"applied"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Applied)
	assert.NotEmpty(t, resp.Message)
}

// --- GetCart / ClearCart tests ---

func TestGetCart_EmptyForFreshSession(t *testing.T) {
	h := newCartHandler()

	req := withSession(httptest.NewRequest(http.MethodGet, "/cart", nil))
	w := httptest.NewRecorder()
	h.GetCart(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Count)
}

func TestClearCart(t *testing.T) {
	h := newCartHandler()

	add := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(addItemBody())))
	h.AddItem(httptest.NewRecorder(), add)

	req := withSession(httptest.NewRequest(http.MethodDelete, "/cart", nil))
	w := httptest.NewRecorder()
	h.ClearCart(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Count)
}
