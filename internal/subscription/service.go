package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
	"github.com/propertydesk/property-broker/internal/payment"
	"github.com/propertydesk/property-broker/internal/repository"
)

// VerifyInput is the payment callback a broker submits after checkout.
type VerifyInput struct {
	OrderID   string             `json:"orderId" binding:"required"`
	PaymentID string             `json:"paymentId" binding:"required"`
	Signature string             `json:"signature" binding:"required"`
	PlanType  constants.PlanType `json:"planType" binding:"required"`
}

// Service manages the subscription lifecycle: order creation, payment
// verification, activation, and the nightly expiry sweep.
type Service struct {
	subs    repository.SubscriptionRepository
	gateway payment.Gateway
	logger  *slog.Logger
}

// NewService creates the subscription service. gateway may be nil when
// payments are not configured; order creation then fails cleanly.
func NewService(subs repository.SubscriptionRepository, gateway payment.Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{subs: subs, gateway: gateway, logger: logger}
}

// CreateOrder opens a gateway order for the given plan. Rejected when the
// user already holds a live subscription.
func (s *Service) CreateOrder(ctx context.Context, userID primitive.ObjectID, plan constants.PlanType) (payment.Order, error) {
	if !constants.ValidPlan(plan) {
		return payment.Order{}, common.NewAppError("BAD_PLAN", "invalid plan type", common.ErrInvalidInput)
	}
	if s.gateway == nil {
		return payment.Order{}, common.NewAppError("PAYMENT_UNCONFIGURED", "payment service is not configured", common.ErrInternal)
	}

	if existing, err := s.subs.FindActiveByUser(ctx, userID); err == nil && !existing.Expired() {
		return payment.Order{}, common.NewAppError("ALREADY_SUBSCRIBED", "an active subscription already exists", common.ErrInvalidInput)
	}

	amountPaise := constants.PlanPrices[plan] * 100
	receipt := fmt.Sprintf("receipt_%s_%d", userID.Hex(), time.Now().UnixMilli())
	order, err := s.gateway.CreateOrder(ctx, amountPaise, receipt)
	if err != nil {
		return payment.Order{}, err
	}

	s.logger.Info("payment order created", "user_id", userID.Hex(), "plan", plan, "order_id", order.ID)
	return order, nil
}

// VerifyAndActivate checks the callback signature, deactivates any old
// subscriptions, and activates a new one with the plan's expiry.
func (s *Service) VerifyAndActivate(ctx context.Context, userID primitive.ObjectID, in VerifyInput) (*entity.Subscription, error) {
	if !constants.ValidPlan(in.PlanType) {
		return nil, common.NewAppError("BAD_PLAN", "invalid plan type", common.ErrInvalidInput)
	}
	if s.gateway == nil {
		return nil, common.NewAppError("PAYMENT_UNCONFIGURED", "payment service is not configured", common.ErrInternal)
	}
	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		s.logger.Warn("payment signature mismatch", "user_id", userID.Hex(), "order_id", in.OrderID)
		return nil, common.NewAppError("BAD_SIGNATURE", "invalid payment signature", common.ErrUnauthorized)
	}

	if err := s.subs.DeactivateAllForUser(ctx, userID); err != nil {
		return nil, err
	}

	start := time.Now()
	sub := &entity.Subscription{
		UserID:           userID,
		PlanType:         in.PlanType,
		PaymentID:        "pay_" + in.PaymentID,
		GatewayOrderID:   in.OrderID,
		GatewayPaymentID: in.PaymentID,
		GatewaySignature: in.Signature,
		Amount:           constants.PlanPrices[in.PlanType],
		StartDate:        start,
		ExpiryDate:       start.AddDate(0, constants.PlanMonths[in.PlanType], 0),
		IsActive:         true,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription activated",
		"user_id", userID.Hex(),
		"plan", sub.PlanType,
		"expiry", sub.ExpiryDate.Format("2006-01-02"),
	)
	return sub, nil
}

// Current returns the user's live subscription. A row that turns out to
// be expired is deactivated on the way out.
func (s *Service) Current(ctx context.Context, userID primitive.ObjectID) (*entity.Subscription, error) {
	sub, err := s.subs.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.Expired() {
		if derr := s.subs.DeactivateAllForUser(ctx, userID); derr != nil {
			s.logger.Warn("failed to deactivate expired subscription", "user_id", userID.Hex(), "error", derr)
		}
		return nil, common.NewAppError("SUBSCRIPTION_EXPIRED", "subscription has expired", common.ErrNotFound)
	}
	return sub, nil
}

// SweepExpired deactivates every subscription past its expiry.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	return s.subs.DeactivateExpired(ctx, time.Now())
}

// StartSweep schedules SweepExpired on the given cron spec and returns
// the running scheduler.
func (s *Service) StartSweep(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.SweepExpired(ctx); err != nil {
			s.logger.Error("subscription sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, common.WrapError(err, "schedule subscription sweep")
	}
	c.Start()
	s.logger.Info("subscription sweep scheduled", "spec", spec)
	return c, nil
}
