// internal/handler/handler_test.go
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanbara234/fiadoapp/internal/models"
	"github.com/sanbara234/fiadoapp/internal/repository"
	"github.com/sanbara234/fiadoapp/internal/service"
	"github.com/sanbara234/fiadoapp/pkg/database"
	"github.com/sanbara234/fiadoapp/pkg/password"
)

type testEnv struct {
	router *gin.Engine
	store  repository.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)

	store := repository.NewSQLiteStore(db)
	require.NoError(t, store.InitSchema(context.Background()))
	t.Cleanup(func() { store.Close() })

	log := zap.NewNop()
	hasher := password.NewBcryptHasher(bcrypt.MinCost)

	authHandler := NewAuthHandler(service.NewAuthService(store, hasher, log), log)
	contactHandler := NewContactHandler(service.NewContactService(store, log), log)
	salesHandler := NewSalesHandler(service.NewSalesService(store, log), log)

	return &testEnv{
		router: NewRouter(authHandler, contactHandler, salesHandler, log),
		store:  store,
	}
}

// do performs a request with an optional bearer token and JSON body.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

func (e *testEnv) register(t *testing.T, email string) *models.AuthResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":         email,
		"password":      "secret123",
		"name":          "Ana",
		"business_name": "Kiosco",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var resp models.AuthResponse
	decode(t, w, &resp)
	return &resp
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":         "ana@example.com",
		"password":      "secret123",
		"name":          "Ana",
		"business_name": "Kiosco",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.AuthResponse
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ana", resp.UserName)
	require.NotNil(t, resp.BusinessID)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie not set")
	assert.Equal(t, resp.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 30*24*60*60, cookie.MaxAge)

	// the cookie authenticates on its own
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthErrors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")

	// no token
	w := env.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// unknown token
	w = env.do(t, http.MethodGet, "/api/v1/auth/me", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// duplicate email
	w = env.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":         "ana@example.com",
		"password":      "x12345678",
		"name":          "Clone",
		"business_name": "Other",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// wrong password
	w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ana@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutInvalidatesEverySession(t *testing.T) {
	env := newTestEnv(t)

	first := env.register(t, "ana@example.com")
	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "ana@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var second models.AuthResponse
	decode(t, w, &second)

	w = env.do(t, http.MethodPost, "/api/v1/auth/logout", second.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the other session is gone too
	w = env.do(t, http.MethodGet, "/api/v1/auth/me", first.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContactLedgerFlow(t *testing.T) {
	env := newTestEnv(t)
	auth := env.register(t, "ana@example.com")

	// create with seed debt
	w := env.do(t, http.MethodPost, "/api/v1/contacts", auth.Token, gin.H{
		"name":         "Rosa",
		"phone":        "11-4567",
		"kind":         "client",
		"initial_debt": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var contact models.Contact
	decode(t, w, &contact)
	assert.True(t, contact.Balance.Equal(decimal.NewFromInt(100)))
	assert.NotNil(t, contact.LastMovement)

	contactPath := "/api/v1/contacts/" + itoa(contact.ID)

	// payment folds the balance down
	w = env.do(t, http.MethodPost, contactPath+"/transactions", auth.Token, gin.H{
		"kind":   "payment",
		"amount": 30,
		"note":   "partial",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var txnResp models.TransactionCreateResponse
	decode(t, w, &txnResp)
	assert.True(t, txnResp.NewBalance.Equal(decimal.NewFromInt(70)))

	// overpayment clamps at zero
	w = env.do(t, http.MethodPost, contactPath+"/transactions", auth.Token, gin.H{
		"kind":   "payment",
		"amount": 200,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &txnResp)
	assert.True(t, txnResp.NewBalance.IsZero())

	// seed debt plus two payments
	w = env.do(t, http.MethodGet, contactPath+"/transactions", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var transactions []models.Transaction
	decode(t, w, &transactions)
	assert.Len(t, transactions, 3)

	// validation failures
	w = env.do(t, http.MethodPost, contactPath+"/transactions", auth.Token, gin.H{
		"kind":   "refund",
		"amount": 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodPost, contactPath+"/transactions", auth.Token, gin.H{
		"kind":   "debt",
		"amount": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// partial update keeps omitted fields
	w = env.do(t, http.MethodPut, contactPath, auth.Token, gin.H{"phone": "11-0000"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &contact)
	assert.Equal(t, "Rosa", contact.Name)
	assert.Equal(t, "11-0000", contact.Phone)

	// delete cascades
	w = env.do(t, http.MethodDelete, contactPath, auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, contactPath+"/transactions", auth.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactListOrderingAndSummary(t *testing.T) {
	env := newTestEnv(t)
	auth := env.register(t, "ana@example.com")

	seed := []struct {
		name string
		debt int
	}{{"B", 10}, {"A", 50}, {"C", 50}, {"D", 0}}
	for _, s := range seed {
		w := env.do(t, http.MethodPost, "/api/v1/contacts", auth.Token, gin.H{
			"name":         s.name,
			"kind":         "client",
			"initial_debt": s.debt,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/v1/contacts?kind=client", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var contacts []models.Contact
	decode(t, w, &contacts)
	require.Len(t, contacts, 4)
	names := []string{contacts[0].Name, contacts[1].Name, contacts[2].Name, contacts[3].Name}
	assert.Equal(t, []string{"A", "C", "B", "D"}, names)

	w = env.do(t, http.MethodGet, "/api/v1/contacts/summary?kind=client", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.ContactSummary
	decode(t, w, &summary)
	assert.Equal(t, 4, summary.Count)
	assert.True(t, summary.TotalBalance.Equal(decimal.NewFromInt(110)))
	assert.True(t, summary.TotalPaid.IsZero())
}

func TestTenantIsolationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "ana@example.com")
	bob := env.register(t, "bob@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/contacts", bob.Token, gin.H{
		"name": "Rosa",
		"kind": "client",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var contact models.Contact
	decode(t, w, &contact)

	contactPath := "/api/v1/contacts/" + itoa(contact.ID)

	// every access from the other tenant reads as absence
	w = env.do(t, http.MethodGet, contactPath+"/transactions", ana.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPut, contactPath, ana.Token, gin.H{"name": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, contactPath, ana.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPost, contactPath+"/transactions", ana.Token, gin.H{
		"kind":   "debt",
		"amount": 5,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBusinessSelection(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "ana@example.com")
	bob := env.register(t, "bob@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/businesses", ana.Token, gin.H{"name": "Branch"})
	require.Equal(t, http.StatusCreated, w.Code)
	var branch models.Business
	decode(t, w, &branch)

	w = env.do(t, http.MethodPut, "/api/v1/businesses/"+itoa(branch.ID)+"/select", ana.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/auth/me", ana.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.MeResponse
	decode(t, w, &me)
	require.NotNil(t, me.BusinessID)
	assert.Equal(t, branch.ID, *me.BusinessID)
	assert.Len(t, me.Businesses, 2)

	// a foreign business cannot be selected
	w = env.do(t, http.MethodPut, "/api/v1/businesses/"+itoa(*bob.BusinessID)+"/select", ana.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoBusinessSelected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// a session without an active business can exist in the store even
	// though register always selects one
	user, err := env.store.CreateUser(ctx, "ana@example.com", "hash", "Ana")
	require.NoError(t, err)
	require.NoError(t, env.store.CreateSession(ctx, "bare-token", user.ID, nil))

	w := env.do(t, http.MethodGet, "/api/v1/contacts", "bare-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSalesFlow(t *testing.T) {
	env := newTestEnv(t)
	auth := env.register(t, "ana@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/sales", auth.Token, gin.H{
		"description": "two empanadas",
		"amount":      8,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var sale models.Sale
	decode(t, w, &sale)

	// zero amount is rejected
	w = env.do(t, http.MethodPost, "/api/v1/sales", auth.Token, gin.H{
		"description": "freebie",
		"amount":      0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/sales?period=today", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sales []models.Sale
	decode(t, w, &sales)
	require.Len(t, sales, 1)

	w = env.do(t, http.MethodGet, "/api/v1/sales/summary?period=all", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.SalesSummary
	decode(t, w, &summary)
	assert.Equal(t, 1, summary.Count)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(8)))

	w = env.do(t, http.MethodDelete, "/api/v1/sales/"+itoa(sale.ID), auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/sales?period=all", auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &sales)
	assert.Empty(t, sales)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
