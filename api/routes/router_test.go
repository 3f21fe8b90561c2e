package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahulvermadev/tiffinbox-backend/internal/auth"
	cartsvc "github.com/rahulvermadev/tiffinbox-backend/internal/cart"
	"github.com/rahulvermadev/tiffinbox-backend/internal/catalog"
	checkoutsvc "github.com/rahulvermadev/tiffinbox-backend/internal/checkout"
	couponsvc "github.com/rahulvermadev/tiffinbox-backend/internal/coupons"
	ordersvc "github.com/rahulvermadev/tiffinbox-backend/internal/orders"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments/phonepe"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments/razorpay"
	"github.com/rahulvermadev/tiffinbox-backend/internal/pricing"
	pkgauth "github.com/rahulvermadev/tiffinbox-backend/pkg/auth"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/config"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) List(ctx context.Context, input catalog.ListInput) (*catalog.ListResultDTO, error) {
	return &catalog.ListResultDTO{}, nil
}

func (stubCatalogService) GetBySlug(ctx context.Context, slug string) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Create(ctx context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Update(ctx context.Context, id uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) Quote(ctx context.Context, input cartsvc.QuoteInput) (*cartsvc.Quote, error) {
	panic("unimplemented")
}

type stubCouponService struct{}

func (stubCouponService) Apply(ctx context.Context, sessionID, code string) (bool, error) {
	panic("unimplemented")
}

func (stubCouponService) Applied(ctx context.Context, sessionID string) (*models.Coupon, error) {
	panic("unimplemented")
}

func (stubCouponService) Remove(ctx context.Context, sessionID string) error {
	panic("unimplemented")
}

type stubCheckoutService struct{}

func (stubCheckoutService) Checkout(ctx context.Context, input checkoutsvc.Input) (*checkoutsvc.Result, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) ApplyPaymentResult(ctx context.Context, input ordersvc.ApplyPaymentInput) (*ordersvc.ApplyPaymentResult, error) {
	panic("unimplemented")
}

func (stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Track(ctx context.Context, orderNumber int64, phone string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) List(ctx context.Context, input ordersvc.ListInput) (*ordersvc.ListResult, error) {
	return &ordersvc.ListResult{}, nil
}

func (stubOrdersService) SetStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	panic("unimplemented")
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.LoginResult, error) {
	panic("unimplemented")
}

func (stubAuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	return nil
}

type stubPlanRepo struct{}

func (s stubPlanRepo) WithTx(tx *gorm.DB) pricing.Repository {
	return s
}

func (stubPlanRepo) FindByID(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	panic("unimplemented")
}

func (stubPlanRepo) ListActive(ctx context.Context) ([]models.SubscriptionPlan, error) {
	return []models.SubscriptionPlan{}, nil
}

func (stubPlanRepo) List(ctx context.Context) ([]models.SubscriptionPlan, error) {
	return []models.SubscriptionPlan{}, nil
}

func (stubPlanRepo) Upsert(ctx context.Context, plan *models.SubscriptionPlan) error {
	panic("unimplemented")
}

type stubCouponRepo struct{}

func (s stubCouponRepo) WithTx(tx *gorm.DB) couponsvc.Repository {
	return s
}

func (stubCouponRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	panic("unimplemented")
}

func (stubCouponRepo) List(ctx context.Context) ([]models.Coupon, error) {
	return []models.Coupon{}, nil
}

func (stubCouponRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	panic("unimplemented")
}

func (stubCouponRepo) Update(ctx context.Context, coupon *models.Coupon) error {
	panic("unimplemented")
}

func (stubCouponRepo) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubCouponRepo) DeactivateExpired(ctx context.Context) (int64, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	rzp, err := razorpay.NewClient(config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		BaseURL:   "https://api.razorpay.com",
	})
	if err != nil {
		t.Fatalf("razorpay client: %v", err)
	}
	ppe, err := phonepe.NewClient(config.PhonePeConfig{
		MerchantID: "TIFFINBOX",
		SaltKey:    "salt-key",
		SaltIndex:  "1",
		BaseURL:    "https://api-preprod.phonepe.com/apis/pg-sandbox",
	})
	if err != nil {
		t.Fatalf("phonepe client: %v", err)
	}
	return NewRouter(Deps{
		Config:     cfg,
		Logger:     logg,
		DB:         stubPinger{},
		Redis:      nil,
		Catalog:    stubCatalogService{},
		Cart:       stubCartService{},
		Coupons:    stubCouponService{},
		Checkout:   stubCheckoutService{},
		Orders:     stubOrdersService{},
		Auth:       stubAuthService{},
		Plans:      stubPlanRepo{},
		CouponRepo: stubCouponRepo{},
		Razorpay:   rzp,
		PhonePe:    ppe,
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		AdminID: uuid.New(),
		Email:   "admin@tiffinbox.in",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveNeedsNoAuth(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestStorefrontRoutesNeedNoAuth(t *testing.T) {
	router := newTestRouter(t, testConfig())

	products := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, products)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for product list got %d", resp.Code)
	}

	plans := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, plans)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for plan list got %d", resp.Code)
	}
}

func TestAdminGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/plans", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAdminGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/plans", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token got %d", resp.Code)
	}
}

func TestAdminGroupRejectsGarbageToken(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/coupons", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token got %d", resp.Code)
	}
}

func TestOrderTrackRequiresParams(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/track", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without track params got %d", resp.Code)
	}
}
