package models

import "time"

// Payment statuses. A payment is created pending and moves to completed
// exactly once when the gateway callback is verified. Payments the
// client never verifies simply stay pending.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment records one external payment attempt for a plan purchase.
type Payment struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	PlanID            string    `json:"planId"`
	PlanName          string    `json:"planName,omitempty"`
	RazorpayOrderID   string    `json:"razorpayOrderId"`
	RazorpayPaymentID string    `json:"razorpayPaymentId,omitempty"`
	Amount            int       `json:"amount"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}
