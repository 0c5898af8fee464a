package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pharmatrack/m/domain"
	"pharmatrack/m/internal/activity"
	"pharmatrack/m/internal/api"
	"pharmatrack/m/internal/auth"
	"pharmatrack/m/internal/authz"
	"pharmatrack/m/internal/clock"
	"pharmatrack/m/internal/config"
	"pharmatrack/m/internal/database/dbtest"
	"pharmatrack/m/internal/metrics"
	"pharmatrack/m/internal/ratelimit"
	"pharmatrack/m/internal/service"
	"pharmatrack/m/internal/store"
	"pharmatrack/m/internal/subscription"
)

var t0 = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

type server struct {
	handler http.Handler
	store   *store.Store
	clock   *clock.FakeClock
	auth    *auth.Service
}

type reply struct {
	Status  int
	Header  http.Header
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T, tweak ...func(*config.Config)) *server {
	t.Helper()
	cfg := config.Config{
		Env:                config.EnvDevelopment,
		CORSAllowedOrigins: []string{"*"},
		RateLimitGeneral:   "10000-M",
		RateLimitAuth:      "1000-M",
		TrialDays:          30,
	}
	for _, fn := range tweak {
		fn(&cfg)
	}

	st := store.New(dbtest.New(t))
	clk := clock.NewFakeClock(t0)
	log := zap.NewNop()
	rec := activity.NewRecorder(st, clk, log)
	subs := subscription.NewService(st, clk, cfg.TrialDays, rec, log)
	tokens := auth.NewTokens("test-secret", 365*24*time.Hour, clk)
	authSvc := auth.NewService(st, tokens, subs, rec, clk, log).WithBcryptCost(bcrypt.MinCost)
	policy, err := authz.NewPolicy()
	require.NoError(t, err)
	limits, err := ratelimit.NewStore(context.Background(), ratelimit.StoreConfig{}, log)
	require.NoError(t, err)

	h, err := api.New(api.Params{
		Config:       cfg,
		Log:          log,
		Clock:        clk,
		Store:        st,
		Tokens:       tokens,
		Auth:         authSvc,
		Subs:         subs,
		Policy:       policy,
		Activity:     rec,
		Customers:    service.NewCustomers(st, clk, rec),
		Medicines:    service.NewMedicines(st, clk, rec),
		Sales:        service.NewSales(st, clk, rec, log),
		Credits:      service.NewCredits(st, clk, rec),
		Settings:     service.NewSettings(st, clk, rec),
		Dashboard:    service.NewDashboard(st, clk),
		Export:       service.NewExport(st, clk, rec),
		Metrics:      metrics.New(),
		LimiterStore: limits.Store,
	})
	require.NoError(t, err)
	return &server{handler: h.Router(), store: st, clock: clk, auth: authSvc}
}

func (s *server) do(t *testing.T, method, path, token string, body any, headers ...string) reply {
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
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	out := reply{Status: rec.Code, Header: rec.Header()}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return out
}

func (r reply) decode(t *testing.T, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dest), string(r.Data))
}

// signup registers a shop and returns its admin token and shop id.
func (s *server) signup(t *testing.T, username string) (string, int64) {
	t.Helper()
	res := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": username,
		"password": "secret1",
		"shopName": username + " Medicals",
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Message)
	var sess auth.Session
	res.decode(t, &sess)
	require.NotNil(t, sess.User.ShopID)
	return sess.Token, *sess.User.ShopID
}

func (s *server) medicine(t *testing.T, token, name, price string, stock int64) domain.Medicine {
	t.Helper()
	res := s.do(t, http.MethodPost, "/api/medicines", token, map[string]any{
		"name":         name,
		"mrp":          price,
		"sellingPrice": price,
		"stock":        stock,
		"expiry":       "2027-12-31",
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Message)
	var m domain.Medicine
	res.decode(t, &m)
	return m
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/api/customers", "/api/medicines", "/api/sales", "/api/dashboard/cards", "/api/subscription/status"} {
		res := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.Status, path)
		assert.False(t, res.Success, path)
		assert.NotEmpty(t, res.Message, path)
	}

	res := s.do(t, http.MethodGet, "/api/customers", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newServer(t)
	res := s.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.False(t, res.Success)
	assert.Equal(t, "route not found", res.Message)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newServer(t)
	res := s.do(t, http.MethodGet, "/api/status/live", "", nil, "X-Request-ID", "req-42")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "req-42", res.Header.Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	s.clock.Advance(90 * time.Second)
	res := s.do(t, http.MethodGet, "/api/status/health", "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	var body map[string]any
	res.decode(t, &body)
	assert.Equal(t, "connected", body["database"])
	assert.EqualValues(t, 90, body["uptime"])

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/status/ready", "", nil).Status)
}

func TestSignupLoginAndSell(t *testing.T) {
	s := newServer(t)
	_, _ = s.signup(t, "asha")

	res := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "asha", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "asha", "password": "secret1"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.Success)
	assert.Equal(t, "Login successful", res.Message)
	var sess auth.Session
	res.decode(t, &sess)
	token := sess.Token

	para := s.medicine(t, token, "Paracetamol 500", "10", 20)

	res = s.do(t, http.MethodPost, "/api/sales", token, map[string]any{
		"customer": map[string]string{"name": "Ravi", "phone": "9876543210"},
		"items":    []map[string]any{{"medicineId": para.ID, "qty": 3}},
		"paid":     "20",
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Message)
	var sale domain.Sale
	res.decode(t, &sale)
	assert.Equal(t, "30", sale.FinalTotal.String())
	assert.Equal(t, "10", sale.Due.String())
	require.NotNil(t, sale.CustomerID)

	res = s.do(t, http.MethodGet, fmt.Sprintf("/api/medicines?search=%s", "para"), token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var meds []domain.Medicine
	res.decode(t, &meds)
	require.Len(t, meds, 1)
	assert.EqualValues(t, 17, meds[0].Stock)

	res = s.do(t, http.MethodGet, "/api/credits?status=pending", token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var book service.CreditBook
	res.decode(t, &book)
	require.Len(t, book.Credits, 1)
	assert.Equal(t, "asha Medicals", book.StoreName)

	res = s.do(t, http.MethodPut, fmt.Sprintf("/api/credits/%d/payment", book.Credits[0].ID), token, map[string]string{"paid": "30"})
	require.Equal(t, http.StatusOK, res.Status, res.Message)
	var credit domain.Credit
	res.decode(t, &credit)
	assert.Equal(t, domain.CreditPaid, credit.Status)

	res = s.do(t, http.MethodGet, fmt.Sprintf("/api/sales/%d", sale.ID), token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	res.decode(t, &sale)
	assert.True(t, sale.Due.IsZero())
}

func TestSaleInsufficientStock(t *testing.T) {
	s := newServer(t)
	token, _ := s.signup(t, "asha")
	m := s.medicine(t, token, "Cetirizine", "5", 2)

	res := s.do(t, http.MethodPost, "/api/sales", token, map[string]any{
		"items": []map[string]any{{"medicineId": m.ID, "qty": 3}},
		"paid":  "15",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Insufficient stock for Cetirizine", res.Message)
	var detail map[string]any
	res.decode(t, &detail)
	assert.EqualValues(t, 2, detail["available"])
	assert.EqualValues(t, 3, detail["requested"])
}

func TestSaleIdempotencyKeyReplays(t *testing.T) {
	s := newServer(t)
	token, _ := s.signup(t, "asha")
	m := s.medicine(t, token, "Amoxicillin", "12.50", 10)
	body := map[string]any{
		"items": []map[string]any{{"medicineId": m.ID, "qty": 2}},
		"paid":  "25",
	}

	first := s.do(t, http.MethodPost, "/api/sales", token, body, "Idempotency-Key", "till-1-0001")
	require.Equal(t, http.StatusCreated, first.Status, first.Message)
	second := s.do(t, http.MethodPost, "/api/sales", token, body, "Idempotency-Key", "till-1-0001")
	require.Equal(t, http.StatusOK, second.Status, second.Message)

	var a, b domain.Sale
	first.decode(t, &a)
	second.decode(t, &b)
	assert.Equal(t, a.ID, b.ID)

	res := s.do(t, http.MethodGet, "/api/medicines", token, nil)
	var meds []domain.Medicine
	res.decode(t, &meds)
	require.Len(t, meds, 1)
	assert.EqualValues(t, 8, meds[0].Stock)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	s := newServer(t)
	token, _ := s.signup(t, "asha")
	m := s.medicine(t, token, "Insulin", "100", 3)

	const buyers = 8
	codes := make(chan int, buyers)
	for i := 0; i < buyers; i++ {
		go func() {
			var buf bytes.Buffer
			_ = json.NewEncoder(&buf).Encode(map[string]any{
				"items": []map[string]any{{"medicineId": m.ID, "qty": 1}},
				"paid":  "100",
			})
			req := httptest.NewRequest(http.MethodPost, "/api/sales", &buf)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, req)
			codes <- rec.Code
		}()
	}
	created := 0
	for i := 0; i < buyers; i++ {
		switch code := <-codes; code {
		case http.StatusCreated:
			created++
		default:
			assert.Equal(t, http.StatusBadRequest, code)
		}
	}
	assert.Equal(t, 3, created)

	res := s.do(t, http.MethodGet, "/api/medicines", token, nil)
	var meds []domain.Medicine
	res.decode(t, &meds)
	require.Len(t, meds, 1)
	assert.Zero(t, meds[0].Stock)
}

func TestTenantsCannotSeeEachOther(t *testing.T) {
	s := newServer(t)
	tokenA, _ := s.signup(t, "asha")
	tokenB, _ := s.signup(t, "bina")

	res := s.do(t, http.MethodPost, "/api/customers", tokenA, map[string]string{"name": "Ravi", "phone": "9000000001"})
	require.Equal(t, http.StatusCreated, res.Status, res.Message)
	var c domain.Customer
	res.decode(t, &c)
	m := s.medicine(t, tokenA, "Dolo 650", "30", 5)

	res = s.do(t, http.MethodGet, fmt.Sprintf("/api/customers/%d", c.ID), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Customer not found", res.Message)

	res = s.do(t, http.MethodPut, fmt.Sprintf("/api/medicines/%d/stock", m.ID), tokenB, map[string]any{"qty": 5})
	assert.Equal(t, http.StatusNotFound, res.Status)

	res = s.do(t, http.MethodGet, "/api/customers", tokenB, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var list []domain.Customer
	res.decode(t, &list)
	assert.Empty(t, list)

	// A shop token cannot pick another tenant through the header.
	res = s.do(t, http.MethodGet, fmt.Sprintf("/api/customers/%d", c.ID), tokenB, nil, "X-Shop-ID", "1")
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestExpiredTrialIsBlockedAndPersisted(t *testing.T) {
	s := newServer(t)
	token, shopID := s.signup(t, "asha")
	s.clock.Advance(31 * 24 * time.Hour)

	res := s.do(t, http.MethodGet, "/api/customers", token, nil)
	require.Equal(t, http.StatusForbidden, res.Status)
	assert.Equal(t, subscription.MsgTrialExpired, res.Message)
	var detail map[string]string
	res.decode(t, &detail)
	assert.Equal(t, string(domain.StatusExpired), detail["subscriptionStatus"])

	var shop domain.Shop
	require.NoError(t, s.store.Global(context.Background(), func(q *store.Queries) error {
		var err error
		shop, err = q.GetShop(context.Background(), shopID)
		return err
	}))
	assert.Equal(t, domain.StatusExpired, shop.SubscriptionStatus)

	// Subscription endpoints stay reachable so the shop can pay.
	res = s.do(t, http.MethodGet, "/api/subscription/status", token, nil)
	assert.Equal(t, http.StatusOK, res.Status)
	res = s.do(t, http.MethodPost, "/api/subscription/activate", token, map[string]string{"planType": "monthly"})
	require.Equal(t, http.StatusOK, res.Status, res.Message)

	res = s.do(t, http.MethodGet, "/api/customers", token, nil)
	assert.Equal(t, http.StatusOK, res.Status)
}

func TestSubscriptionStatusFlagsExpiringSoon(t *testing.T) {
	s := newServer(t)
	token, _ := s.signup(t, "asha")
	s.clock.Advance(25 * 24 * time.Hour)

	res := s.do(t, http.MethodGet, "/api/subscription/status", token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var body map[string]any
	res.decode(t, &body)
	assert.EqualValues(t, 5, body["daysRemaining"])
	assert.Equal(t, true, body["willExpireSoon"])
	assert.Equal(t, "trial", body["subscriptionStatus"])
}

func TestPlansArePublic(t *testing.T) {
	s := newServer(t)
	res := s.do(t, http.MethodGet, "/api/subscription/plans", "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	var body struct {
		Plans     []subscription.Plan `json:"plans"`
		TrialDays int                 `json:"trialDays"`
	}
	res.decode(t, &body)
	assert.Len(t, body.Plans, 4)
	assert.Equal(t, 30, body.TrialDays)
}

func TestStaffCannotChangeSettings(t *testing.T) {
	s := newServer(t)
	admin, _ := s.signup(t, "asha")

	res := s.do(t, http.MethodPost, "/api/users", admin, map[string]string{"username": "counter1", "password": "secret1", "role": "staff"})
	require.Equal(t, http.StatusCreated, res.Status, res.Message)

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "counter1", "password": "secret1"})
	require.Equal(t, http.StatusOK, res.Status, res.Message)
	var sess auth.Session
	res.decode(t, &sess)

	res = s.do(t, http.MethodGet, "/api/settings", sess.Token, nil)
	assert.Equal(t, http.StatusOK, res.Status)
	res = s.do(t, http.MethodPut, "/api/settings", sess.Token, map[string]string{"storeName": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, res.Status)
	res = s.do(t, http.MethodGet, "/api/export/full-backup", sess.Token, nil)
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = s.do(t, http.MethodPut, "/api/settings", admin, map[string]string{"storeName": "Asha Health", "invoicePrefix": "AH"})
	require.Equal(t, http.StatusOK, res.Status, res.Message)
}

func TestSuperAdminNeedsShopHeader(t *testing.T) {
	s := newServer(t)
	_, shopID := s.signup(t, "asha")
	created, err := s.auth.EnsureSuperAdmin(context.Background(), "root", "rootpass")
	require.NoError(t, err)
	require.True(t, created)

	res := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "root", "password": "rootpass"})
	require.Equal(t, http.StatusOK, res.Status, res.Message)
	var sess auth.Session
	res.decode(t, &sess)

	res = s.do(t, http.MethodGet, "/api/customers", sess.Token, nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "shop context required", res.Message)

	res = s.do(t, http.MethodGet, "/api/customers", sess.Token, nil, "X-Shop-ID", "abc")
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = s.do(t, http.MethodGet, "/api/customers", sess.Token, nil, "X-Shop-ID", fmt.Sprint(shopID))
	assert.Equal(t, http.StatusOK, res.Status)

	res = s.do(t, http.MethodGet, "/api/admin/shops", sess.Token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var shops []subscription.Snapshot
	res.decode(t, &shops)
	require.Len(t, shops, 1)

	res = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/shops/%d/suspend", shopID), sess.Token, nil)
	require.Equal(t, http.StatusOK, res.Status, res.Message)
}

func TestShopAdminCannotUseAdminRoutes(t *testing.T) {
	s := newServer(t)
	token, _ := s.signup(t, "asha")
	res := s.do(t, http.MethodGet, "/api/admin/shops", token, nil)
	assert.Equal(t, http.StatusForbidden, res.Status)
}

func TestAuthRateLimit(t *testing.T) {
	s := newServer(t, func(c *config.Config) { c.RateLimitAuth = "2-M" })
	login := map[string]string{"username": "ghost", "password": "whatever"}

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/auth/login", "", login).Status)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/auth/login", "", login).Status)
	res := s.do(t, http.MethodPost, "/api/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, res.Status)
	assert.False(t, res.Success)

	// Other routes use their own budget.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/status/live", "", nil).Status)
}

func TestUnknownFieldsAreRejected(t *testing.T) {
	s := newServer(t)
	token, _ := s.signup(t, "asha")
	res := s.do(t, http.MethodPost, "/api/customers", token, map[string]string{"name": "Ravi", "phone": "9000000001", "shop_id": "7"})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Message, "invalid request body")
}

func TestExportSalesCSV(t *testing.T) {
	s := newServer(t)
	token, _ := s.signup(t, "asha")
	m := s.medicine(t, token, "ORS", "20", 5)
	res := s.do(t, http.MethodPost, "/api/sales", token, map[string]any{
		"items": []map[string]any{{"medicineId": m.ID, "qty": 1}},
		"paid":  "20",
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/export/sales/csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="asha-medicals-sales-2026-07-01.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Walk-in Customer")
}

func TestDeactivatedUserCannotLogIn(t *testing.T) {
	s := newServer(t)
	admin, _ := s.signup(t, "asha")

	res := s.do(t, http.MethodPost, "/api/users", admin, map[string]string{"username": "counter1", "password": "secret1", "role": "staff"})
	require.Equal(t, http.StatusCreated, res.Status, res.Message)
	var staff domain.User
	res.decode(t, &staff)

	res = s.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/status", staff.ID), admin, map[string]bool{"isActive": false})
	require.Equal(t, http.StatusOK, res.Status, res.Message)

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "counter1", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "account is disabled", res.Message)
}

func TestMedicineStockRoutes(t *testing.T) {
	s := newServer(t)
	token, _ := s.signup(t, "asha")
	m := s.medicine(t, token, "Azithromycin", "60", 4)

	res := s.do(t, http.MethodPut, fmt.Sprintf("/api/medicines/update-stock/%d", m.ID), token, map[string]any{"qty": 6, "expiry": "2028-01-31"})
	require.Equal(t, http.StatusOK, res.Status, res.Message)
	res.decode(t, &m)
	assert.EqualValues(t, 10, m.Stock)
	assert.Equal(t, "2028-01-31", m.Expiry)

	res = s.do(t, http.MethodPut, fmt.Sprintf("/api/medicines/%d/stock", m.ID), token, map[string]any{"qty": 0})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = s.do(t, http.MethodGet, "/api/medicines?q=azi", token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var meds []domain.Medicine
	res.decode(t, &meds)
	assert.Len(t, meds, 1)
}

func TestDeactivatedUserTokenStopsWorking(t *testing.T) {
	s := newServer(t)
	admin, _ := s.signup(t, "asha")

	res := s.do(t, http.MethodPost, "/api/users", admin, map[string]string{"username": "counter1", "password": "secret1", "role": "staff"})
	require.Equal(t, http.StatusCreated, res.Status, res.Message)
	var staff domain.User
	res.decode(t, &staff)

	res = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "counter1", "password": "secret1"})
	require.Equal(t, http.StatusOK, res.Status, res.Message)
	var sess auth.Session
	res.decode(t, &sess)

	res = s.do(t, http.MethodGet, "/api/customers", sess.Token, nil)
	require.Equal(t, http.StatusOK, res.Status, res.Message)

	res = s.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/status", staff.ID), admin, map[string]bool{"isActive": false})
	require.Equal(t, http.StatusOK, res.Status, res.Message)

	res = s.do(t, http.MethodGet, "/api/customers", sess.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "account is disabled", res.Message)

	res = s.do(t, http.MethodGet, "/api/auth/me", sess.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res = s.do(t, http.MethodGet, "/api/customers", admin, nil)
	assert.Equal(t, http.StatusOK, res.Status)
}

func TestSearchPaging(t *testing.T) {
	s := newServer(t)
	token, _ := s.signup(t, "asha")
	for i := 0; i < 55; i++ {
		res := s.do(t, http.MethodPost, "/api/customers", token, map[string]string{
			"name":  fmt.Sprintf("Buyer %02d", i),
			"phone": fmt.Sprintf("98%02d", i),
		})
		require.Equal(t, http.StatusCreated, res.Status, res.Message)
	}

	res := s.do(t, http.MethodGet, "/api/customers", token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	var customers []domain.Customer
	res.decode(t, &customers)
	assert.Len(t, customers, 55)

	res = s.do(t, http.MethodGet, "/api/customers?search=buyer&limit=20&offset=40", token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	res.decode(t, &customers)
	require.Len(t, customers, 15)
	assert.Equal(t, "Buyer 40", customers[0].Name)

	res = s.do(t, http.MethodGet, "/api/medicines?limit=-1", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}
