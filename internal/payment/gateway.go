package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/propertydesk/property-broker/internal/common"
)

// Order is a payment order created with the gateway. Amount is in paise.
type Order struct {
	ID       string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Gateway abstracts the payment provider. The platform only needs order
// creation and signature verification; everything else happens on the
// provider's checkout page.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// HMACGateway implements the Razorpay-style contract: orders carry an
// opaque id and callbacks are signed with HMAC-SHA256 over
// "orderId|paymentId" using the key secret.
type HMACGateway struct {
	keyID     string
	keySecret string
}

// NewHMACGateway creates a gateway from credentials. Returns an error
// when credentials are missing so callers can surface "not configured"
// instead of accepting unverifiable payments.
func NewHMACGateway(keyID, keySecret string) (*HMACGateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, common.NewAppError("PAYMENT_UNCONFIGURED", "payment gateway credentials are not set", common.ErrInvalidInput)
	}
	return &HMACGateway{keyID: keyID, keySecret: keySecret}, nil
}

func (g *HMACGateway) CreateOrder(_ context.Context, amountPaise int64, receipt string) (Order, error) {
	if amountPaise <= 0 {
		return Order{}, common.NewAppError("BAD_AMOUNT", "order amount must be positive", common.ErrInvalidInput)
	}
	return Order{
		ID:       "order_" + uuid.NewString(),
		Amount:   amountPaise,
		Currency: "INR",
		Receipt:  receipt,
	}, nil
}

// VerifySignature checks the callback signature in constant time.
func (g *HMACGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
