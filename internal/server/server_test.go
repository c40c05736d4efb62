package server

import (
	"context"
	"digital-storefront/internal/audit"
	"digital-storefront/internal/config"
	"digital-storefront/internal/dto"
	"digital-storefront/internal/logging"
	"digital-storefront/internal/metrics"
	appmw "digital-storefront/internal/middleware"
	"digital-storefront/internal/model"
	"digital-storefront/internal/repository"
	"digital-storefront/internal/service"
	"digital-storefront/internal/testutil"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

const adminSecret = "server-test-secret"

type testServer struct {
	srv   *Server
	db    *gorm.DB
	clock *testutil.Clock
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.OpenDB(t)
	clock := testutil.NewClock(t0)
	logger := logging.Discard()
	m := metrics.New()

	recorder := audit.NewRecorder(audit.NewLogSink(logger), time.Second, logger)
	t.Cleanup(func() { _ = recorder.Close() })

	orderRepo := repository.NewOrderRepository(db)
	accessRepo := repository.NewAccessRepository(db)
	productRepo := repository.NewProductRepository(db)

	purchases := service.NewPurchaseService(db, orderRepo, accessRepo, recorder, logger, clock.Now)
	tracker := service.NewAccessTracker(purchases, accessRepo, recorder, m, logger, clock.Now)
	catalog := service.NewCatalogService(productRepo)
	require.NoError(t, catalog.Seed(context.Background()))

	cfg := &config.Config{Auth: config.Auth{AdminJWTSecret: adminSecret}}
	srv := NewServer(cfg, Services{
		Catalog:   catalog,
		Purchases: purchases,
		Downloads: service.NewDownloadService(purchases, tracker, productRepo, nil),
		Tracker:   tracker,
		Evaluator: service.NewEligibilityEvaluator(purchases, m, clock.Now),
		Refunds: service.NewRefundRegistry(db, purchases, orderRepo, accessRepo,
			repository.NewRefundRepository(db), nil, recorder, m, logger, clock.Now),
	}, config.DefaultPolicy(), m, logger)

	token, err := appmw.GenerateAdminToken("ops@example.com", []byte(adminSecret), time.Hour)
	require.NoError(t, err)

	return &testServer{srv: srv, db: db, clock: clock, token: token}
}

func (ts *testServer) do(t *testing.T, method, path, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}

	rec := httptest.NewRecorder()
	ts.srv.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestServer_PreviewThenDownload(t *testing.T) {
	ts := newTestServer(t)
	testutil.SeedPurchase(t, ts.db, "ORD-1", "ebook_go_patterns", "buyer@example.com", 1999, t0)

	ts.clock.Set(t0.Add(time.Hour))
	rec := ts.do(t, http.MethodPost, "/api/access", `{"orderId":"ORD-1","productId":"ebook_go_patterns","accessType":"preview"}`, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recorded := decode[dto.RecordAccessResponse](t, rec)
	assert.True(t, recorded.Success)
	assert.True(t, recorded.RefundEligible)

	rec = ts.do(t, http.MethodGet, "/api/eligibility?orderId=ORD-1&productId=ebook_go_patterns", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	verdict := decode[dto.EligibilityResponse](t, rec)
	assert.True(t, verdict.Eligible)
	require.NotNil(t, verdict.TimeRemaining)
	assert.InDelta(t, 23.0, *verdict.TimeRemaining, 0.001)

	ts.clock.Set(t0.Add(2 * time.Hour))
	rec = ts.do(t, http.MethodPost, "/api/access", `{"orderId":"ORD-1","productId":"ebook_go_patterns","accessType":"download"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	recorded = decode[dto.RecordAccessResponse](t, rec)
	assert.False(t, recorded.RefundEligible)
	assert.Equal(t, "already accessed/downloaded", recorded.RefundMessage)

	rec = ts.do(t, http.MethodGet, "/api/eligibility?orderId=ORD-1&productId=ebook_go_patterns", "", false)
	verdict = decode[dto.EligibilityResponse](t, rec)
	assert.False(t, verdict.Eligible)
	assert.Equal(t, "already accessed/downloaded", verdict.Reason)
	assert.Nil(t, verdict.TimeRemaining)

	rec = ts.do(t, http.MethodPost, "/api/refund-requests",
		`{"orderId":"ORD-1","productId":"ebook_go_patterns","customerEmail":"buyer@example.com","reason":"Accidental purchase"}`, false)
	require.Equal(t, http.StatusConflict, rec.Code)
	errBody := decode[dto.ErrorResponse](t, rec)
	assert.Equal(t, "ineligible", errBody.Error.Kind)
	assert.Equal(t, "already accessed/downloaded", errBody.Error.Message)
}

func TestServer_RecordAccessErrors(t *testing.T) {
	ts := newTestServer(t)
	testutil.SeedPurchase(t, ts.db, "ORD-1", "ebook_go_patterns", "buyer@example.com", 1999, t0)

	rec := ts.do(t, http.MethodPost, "/api/access", `{"orderId":"ORD-1","accessType":"download"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decode[dto.ErrorResponse](t, rec).Error.Kind)

	rec = ts.do(t, http.MethodPost, "/api/access", `{"orderId":"ORD-9","productId":"ebook_go_patterns","accessType":"download"}`, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[dto.ErrorResponse](t, rec).Error.Kind)

	rec = ts.do(t, http.MethodPost, "/api/access", `{not json`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_RefundLifecycle(t *testing.T) {
	ts := newTestServer(t)
	testutil.SeedPurchase(t, ts.db, "ORD-1", "icon_pack_pro", "buyer@example.com", 999, t0)

	ts.clock.Set(t0.Add(30 * time.Minute))
	rec := ts.do(t, http.MethodPost, "/api/refund-requests",
		`{"orderId":"ORD-1","productId":"icon_pack_pro","customerEmail":"buyer@example.com","reason":"Not as described","amount":999}`, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.CreateRefundResponse](t, rec)
	assert.Equal(t, "pending", created.Status)

	rec = ts.do(t, http.MethodGet, "/api/admin/refund-requests", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode[dto.ErrorResponse](t, rec).Error.Kind)

	rec = ts.do(t, http.MethodGet, "/api/admin/refund-requests?status=pending", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]dto.RefundRequest](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.RequestID, list[0].ID)
	assert.Equal(t, "9.99", list[0].RefundAmount)

	path := "/api/admin/refund-requests/" + created.RequestID
	rec = ts.do(t, http.MethodPost, path+"/decide", `{"decision":"denied"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, path+"/processed", "", true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_state", decode[dto.ErrorResponse](t, rec).Error.Kind)

	rec = ts.do(t, http.MethodPost, path+"/decide", `{"decision":"approved"}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decided := decode[dto.RefundRequest](t, rec)
	assert.Equal(t, "approved", decided.Status)
	assert.Equal(t, "ops@example.com", decided.DecidedBy)

	rec = ts.do(t, http.MethodPost, path+"/decide", `{"decision":"denied","denialReason":"late"}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, path+"/processed", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "processed", decode[dto.RefundRequest](t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/api/admin/refund-requests/missing", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CompleteOrderAndCatalog(t *testing.T) {
	ts := newTestServer(t)
	orderRepo := repository.NewOrderRepository(ts.db)
	require.NoError(t, orderRepo.Create(context.Background(), nil, &model.Order{
		OrderID:       "ORD-5",
		Status:        model.OrderStatusApproved,
		CustomerEmail: "buyer@example.com",
		Amount:        999,
		Currency:      "USD",
		CreatedAt:     t0,
	}))
	require.NoError(t, orderRepo.CreateOrderItems(context.Background(), nil, []*model.OrderItem{
		{OrderID: "ORD-5", ProductID: "icon_pack_pro", Quantity: 1, UnitPrice: 999, Currency: "USD"},
	}))

	rec := ts.do(t, http.MethodPost, "/api/admin/orders/ORD-5/complete", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "COMPLETED", decode[dto.CompleteOrderResponse](t, rec).Status)

	order, err := orderRepo.FindByOrderID(context.Background(), nil, "ORD-5")
	require.NoError(t, err)
	assert.NotNil(t, order.CompletedAt)

	rec = ts.do(t, http.MethodGet, "/api/eligibility?orderId=ORD-5&productId=icon_pack_pro", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.EligibilityResponse](t, rec).Eligible)

	rec = ts.do(t, http.MethodGet, "/api/products?type=ONE_TIME", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)
	assert.NotContains(t, rec.Body.String(), "assetKey")

	rec = ts.do(t, http.MethodGet, "/api/refund-policy", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	policy := decode[dto.RefundPolicyResponse](t, rec)
	assert.Equal(t, 24, policy.MaxRefundHours)
	assert.NotEmpty(t, policy.SuggestedReasons)

	rec = ts.do(t, http.MethodPost, "/api/downloads", `{"orderId":"ORD-5","productId":"icon_pack_pro"}`, false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "storage is not configured")
	assert.Equal(t, "store_unavailable", decode[dto.ErrorResponse](t, rec).Error.Kind)

	rec = ts.do(t, http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `path="/api/products"`)
}
