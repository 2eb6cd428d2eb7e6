package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_secret"
	orderID := "order_123"
	paymentID := "pay_456"

	assert.True(t, VerifySignature(orderID, paymentID, sign(orderID, paymentID, secret), secret))
	assert.False(t, VerifySignature(orderID, paymentID, sign(orderID, paymentID, "wrong_secret"), secret))
	assert.False(t, VerifySignature(orderID, paymentID, "not-a-signature", secret))
	assert.False(t, VerifySignature("order_999", paymentID, sign(orderID, paymentID, secret), secret))
	assert.False(t, VerifySignature(orderID, paymentID, "", secret))
}
