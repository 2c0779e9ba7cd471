package subscription

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
	"github.com/propertydesk/property-broker/internal/payment"
)

type memSubRepo struct {
	subs []*entity.Subscription
}

func (m *memSubRepo) Create(_ context.Context, s *entity.Subscription) error {
	s.ID = primitive.NewObjectID()
	m.subs = append(m.subs, s)
	return nil
}

func (m *memSubRepo) FindActiveByUser(_ context.Context, userID primitive.ObjectID) (*entity.Subscription, error) {
	for _, s := range m.subs {
		if s.UserID == userID && s.IsActive {
			return s, nil
		}
	}
	return nil, common.NewAppError("NOT_FOUND", "no active subscription", common.ErrNotFound)
}

func (m *memSubRepo) DeactivateAllForUser(_ context.Context, userID primitive.ObjectID) error {
	for _, s := range m.subs {
		if s.UserID == userID {
			s.IsActive = false
		}
	}
	return nil
}

func (m *memSubRepo) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, s := range m.subs {
		if s.IsActive && !s.ExpiryDate.After(now) {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}

func (m *memSubRepo) List(ctx context.Context, _ string, _, _ int) ([]entity.Subscription, int64, error) {
	out, err := m.ListAll(ctx)
	return out, int64(len(out)), err
}

func (m *memSubRepo) ListAll(context.Context) ([]entity.Subscription, error) {
	out := make([]entity.Subscription, len(m.subs))
	for i, s := range m.subs {
		out[i] = *s
	}
	return out, nil
}

func (m *memSubRepo) CountActive(context.Context, time.Time) (int64, error)  { return 0, nil }
func (m *memSubRepo) CountExpired(context.Context, time.Time) (int64, error) { return 0, nil }
func (m *memSubRepo) RevenueActive(context.Context, time.Time) (int64, error) {
	return 0, nil
}

const testSecret = "test-key-secret"

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newTestService(t *testing.T) (*Service, *memSubRepo) {
	t.Helper()
	gw, err := payment.NewHMACGateway("test-key-id", testSecret)
	require.NoError(t, err)
	repo := &memSubRepo{}
	return NewService(repo, gw, nil), repo
}

func TestCreateOrderPricesPlanInPaise(t *testing.T) {
	svc, _ := newTestService(t)

	order, err := svc.CreateOrder(context.Background(), primitive.NewObjectID(), constants.PlanMonthly)
	require.NoError(t, err)
	assert.Equal(t, int64(99900), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.NotEmpty(t, order.ID)
}

func TestCreateOrderRejectsInvalidPlan(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateOrder(context.Background(), primitive.NewObjectID(), constants.PlanType("yearly"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCreateOrderRejectsLiveSubscription(t *testing.T) {
	svc, repo := newTestService(t)
	userID := primitive.NewObjectID()
	repo.subs = append(repo.subs, &entity.Subscription{
		UserID:     userID,
		IsActive:   true,
		ExpiryDate: time.Now().Add(24 * time.Hour),
	})

	_, err := svc.CreateOrder(context.Background(), userID, constants.PlanMonthly)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestVerifyAndActivate(t *testing.T) {
	svc, repo := newTestService(t)
	userID := primitive.NewObjectID()

	// an old active subscription should be deactivated
	old := &entity.Subscription{UserID: userID, IsActive: true, ExpiryDate: time.Now().Add(-time.Hour)}
	repo.subs = append(repo.subs, old)

	in := VerifyInput{
		OrderID:   "order_abc",
		PaymentID: "xyz123",
		Signature: signPayment("order_abc", "xyz123"),
		PlanType:  constants.PlanQuarterly,
	}
	sub, err := svc.VerifyAndActivate(context.Background(), userID, in)
	require.NoError(t, err)

	assert.False(t, old.IsActive)
	assert.True(t, sub.IsActive)
	assert.Equal(t, "pay_xyz123", sub.PaymentID)
	assert.Equal(t, int64(2499), sub.Amount)

	wantExpiry := sub.StartDate.AddDate(0, 3, 0)
	assert.WithinDuration(t, wantExpiry, sub.ExpiryDate, time.Second)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	svc, repo := newTestService(t)

	in := VerifyInput{
		OrderID:   "order_abc",
		PaymentID: "xyz123",
		Signature: "deadbeef",
		PlanType:  constants.PlanMonthly,
	}
	_, err := svc.VerifyAndActivate(context.Background(), primitive.NewObjectID(), in)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Empty(t, repo.subs)
}

func TestCurrentDeactivatesExpired(t *testing.T) {
	svc, repo := newTestService(t)
	userID := primitive.NewObjectID()
	repo.subs = append(repo.subs, &entity.Subscription{
		UserID:     userID,
		IsActive:   true,
		ExpiryDate: time.Now().Add(-time.Hour),
	})

	_, err := svc.Current(context.Background(), userID)
	require.Error(t, err)
	assert.False(t, repo.subs[0].IsActive)
}

func TestSweepExpired(t *testing.T) {
	svc, repo := newTestService(t)
	repo.subs = append(repo.subs,
		&entity.Subscription{UserID: primitive.NewObjectID(), IsActive: true, ExpiryDate: time.Now().Add(-time.Hour)},
		&entity.Subscription{UserID: primitive.NewObjectID(), IsActive: true, ExpiryDate: time.Now().Add(time.Hour)},
	)

	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, repo.subs[0].IsActive)
	assert.True(t, repo.subs[1].IsActive)
}
