package coupons

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type stubCouponRepo struct {
	coupons map[string]*models.Coupon
	err     error
}

func (s *stubCouponRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCouponRepo) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.coupons[code], nil
}

func (s *stubCouponRepo) List(context.Context) ([]models.Coupon, error) { return nil, nil }
func (s *stubCouponRepo) Create(context.Context, *models.Coupon) error  { return nil }
func (s *stubCouponRepo) Update(context.Context, *models.Coupon) error  { return nil }
func (s *stubCouponRepo) Delete(context.Context, uuid.UUID) error       { return nil }
func (s *stubCouponRepo) DeactivateExpired(context.Context) (int64, error) {
	return 0, nil
}

type stubSessionStore struct {
	values map[string]string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{values: map[string]string{}}
}

func (s *stubSessionStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *stubSessionStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubSessionStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *stubSessionStore) CouponSessionKey(sessionID string) string {
	return "coupon_session:" + sessionID
}

func fixedCoupon(code string, value int64) *models.Coupon {
	return &models.Coupon{
		ID:     uuid.New(),
		Code:   code,
		Type:   enums.CouponTypeFixed,
		Value:  decimal.NewFromInt(value),
		Active: true,
	}
}

func newTestCouponService(t *testing.T, repo Repository, sessions sessionStore) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repo:     repo,
		Sessions: sessions,
		TTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func TestApplyValidCoupon(t *testing.T) {
	t.Parallel()

	repo := &stubCouponRepo{coupons: map[string]*models.Coupon{
		"TIFFIN50": fixedCoupon("TIFFIN50", 50),
	}}
	sessions := newStubSessionStore()
	svc := newTestCouponService(t, repo, sessions)

	ok, err := svc.Apply(context.Background(), "sess-1", "TIFFIN50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected coupon to be applied")
	}

	applied, err := svc.Applied(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied == nil || applied.Code != "TIFFIN50" {
		t.Fatalf("expected TIFFIN50 applied, got %+v", applied)
	}
}

func TestApplyIsCaseSensitive(t *testing.T) {
	t.Parallel()

	repo := &stubCouponRepo{coupons: map[string]*models.Coupon{
		"TIFFIN50": fixedCoupon("TIFFIN50", 50),
	}}
	svc := newTestCouponService(t, repo, newStubSessionStore())

	ok, err := svc.Apply(context.Background(), "sess-1", "tiffin50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("lowercase code should not match")
	}
}

func TestInvalidApplyKeepsPreviousCoupon(t *testing.T) {
	t.Parallel()

	repo := &stubCouponRepo{coupons: map[string]*models.Coupon{
		"TIFFIN50": fixedCoupon("TIFFIN50", 50),
	}}
	sessions := newStubSessionStore()
	svc := newTestCouponService(t, repo, sessions)

	if ok, _ := svc.Apply(context.Background(), "sess-1", "TIFFIN50"); !ok {
		t.Fatal("setup apply failed")
	}
	ok, err := svc.Apply(context.Background(), "sess-1", "BOGUS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("unknown code should be rejected")
	}

	applied, err := svc.Applied(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied == nil || applied.Code != "TIFFIN50" {
		t.Fatalf("previous coupon should survive a failed apply, got %+v", applied)
	}
}

func TestApplyReplacesPreviousCoupon(t *testing.T) {
	t.Parallel()

	repo := &stubCouponRepo{coupons: map[string]*models.Coupon{
		"TIFFIN50":  fixedCoupon("TIFFIN50", 50),
		"TIFFIN100": fixedCoupon("TIFFIN100", 100),
	}}
	sessions := newStubSessionStore()
	svc := newTestCouponService(t, repo, sessions)

	if ok, _ := svc.Apply(context.Background(), "sess-1", "TIFFIN50"); !ok {
		t.Fatal("setup apply failed")
	}
	if ok, _ := svc.Apply(context.Background(), "sess-1", "TIFFIN100"); !ok {
		t.Fatal("second apply failed")
	}

	applied, _ := svc.Applied(context.Background(), "sess-1")
	if applied == nil || applied.Code != "TIFFIN100" {
		t.Fatalf("expected TIFFIN100 to replace TIFFIN50, got %+v", applied)
	}
}

func TestApplyExpiredCouponRejected(t *testing.T) {
	t.Parallel()

	past := time.Now().UTC().Add(-time.Hour)
	expired := fixedCoupon("OLD10", 10)
	expired.ExpiresAt = &past

	repo := &stubCouponRepo{coupons: map[string]*models.Coupon{"OLD10": expired}}
	svc := newTestCouponService(t, repo, newStubSessionStore())

	ok, err := svc.Apply(context.Background(), "sess-1", "OLD10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expired coupon should be rejected")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	svc := newTestCouponService(t, &stubCouponRepo{}, newStubSessionStore())

	if err := svc.Remove(context.Background(), "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Remove(context.Background(), "sess-1"); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
}

func TestAppliedDropsStaleCoupon(t *testing.T) {
	t.Parallel()

	stale := fixedCoupon("GONE", 20)
	stale.Active = false
	repo := &stubCouponRepo{coupons: map[string]*models.Coupon{"GONE": stale}}
	sessions := newStubSessionStore()
	sessions.values["coupon_session:sess-1"] = "GONE"
	svc := newTestCouponService(t, repo, sessions)

	applied, err := svc.Applied(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied != nil {
		t.Fatalf("deactivated coupon should be dropped, got %+v", applied)
	}
	if _, ok := sessions.values["coupon_session:sess-1"]; ok {
		t.Fatal("stale session entry should be cleared")
	}
}

func TestDiscounted(t *testing.T) {
	t.Parallel()

	price := decimal.NewFromInt(1260)

	flat := fixedCoupon("TIFFIN50", 50)
	if got := Discounted(price, flat); !got.Equal(decimal.NewFromInt(1210)) {
		t.Fatalf("flat 50 off 1260 = %s, want 1210", got)
	}

	pct := &models.Coupon{
		Code:   "SAVE10",
		Type:   enums.CouponTypePercentage,
		Value:  decimal.NewFromInt(10),
		Active: true,
	}
	if got := Discounted(price, pct); !got.Equal(decimal.NewFromInt(1134)) {
		t.Fatalf("10%% off 1260 = %s, want 1134", got)
	}

	big := fixedCoupon("MEGA", 5000)
	if got := Discounted(decimal.NewFromInt(100), big); !got.Equal(decimal.Zero) {
		t.Fatalf("discount must clamp at zero, got %s", got)
	}

	if got := Discounted(price, nil); !got.Equal(price) {
		t.Fatalf("nil coupon must leave price unchanged, got %s", got)
	}
}
