// Package models contains the domain structures of the service:
// users with their embedded subscription state, admins, subscription
// plans, payments and media items.
package models

import "time"

// Subscription statuses stored on the user record.
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionPending  = "pending"
)

// User represents a registered (or half-registered) user. A record is
// created on the first OTP touchpoint; the password hash is optional
// for OTP-only accounts.
type User struct {
	ID           string
	FullName     string
	Email        string
	MobileNumber string
	PasswordHash string
	CustomerID   string
	IsVerified   bool
	OTPCode      string
	OTPExpiresAt *time.Time
	Subscription UserSubscription
	Members      []Member
	LastLogin    *time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSubscription is the subscription state embedded in the user record.
// It is overwritten as a whole by the payment-verification step.
type UserSubscription struct {
	PlanID    string     `json:"planId,omitempty"`
	PlanName  string     `json:"planName,omitempty"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	PaymentID string     `json:"paymentId,omitempty"`
	Amount    int        `json:"amount"`
}

// Member is an additional member covered by a family subscription.
type Member struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
}

// PublicUser is the user shape returned by the auth endpoints.
type PublicUser struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	CustomerID string `json:"customerId"`
	IsVerified bool   `json:"isVerified"`
}

// Public converts a user to its API representation.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		CustomerID: u.CustomerID,
		IsVerified: u.IsVerified,
	}
}
