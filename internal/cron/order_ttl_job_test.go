package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
)

type stubStaleReader struct {
	orders []models.Order
	cutoff time.Time
}

func (s *stubStaleReader) FindStalePendingBefore(_ context.Context, cutoff time.Time, _ int) ([]models.Order, error) {
	s.cutoff = cutoff
	return s.orders, nil
}

type stubExpirer struct {
	expired []uuid.UUID
}

func (s *stubExpirer) UpdateStatusIf(_ context.Context, orderID uuid.UUID, _ []enums.OrderStatus, to enums.OrderStatus, _ map[string]any) (bool, error) {
	if to != enums.OrderStatusExpired {
		return false, nil
	}
	s.expired = append(s.expired, orderID)
	return true, nil
}

func TestOrderTTLJobExpiresStaleOrders(t *testing.T) {
	t.Parallel()

	stale := models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	reader := &stubStaleReader{orders: []models.Order{stale}}
	expirer := &stubExpirer{}

	job, err := NewOrderTTLJob(OrderTTLJobParams{
		Logger:  testLogger(),
		Reader:  reader,
		Expirer: expirer,
		MaxAge:  48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(expirer.expired) != 1 || expirer.expired[0] != stale.ID {
		t.Fatalf("expected order expired, got %v", expirer.expired)
	}

	wantCutoff := time.Now().UTC().Add(-48 * time.Hour)
	if reader.cutoff.Sub(wantCutoff) > time.Minute || wantCutoff.Sub(reader.cutoff) > time.Minute {
		t.Fatalf("cutoff = %s, want about %s", reader.cutoff, wantCutoff)
	}
}

type stubDeactivator struct {
	count int64
	runs  int
}

func (s *stubDeactivator) DeactivateExpired(context.Context) (int64, error) {
	s.runs++
	return s.count, nil
}

func TestCouponExpiryJob(t *testing.T) {
	t.Parallel()

	deactivator := &stubDeactivator{count: 3}
	job, err := NewCouponExpiryJob(CouponExpiryJobParams{
		Logger:  testLogger(),
		Coupons: deactivator,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if deactivator.runs != 1 {
		t.Fatalf("expected one run, got %d", deactivator.runs)
	}
}
