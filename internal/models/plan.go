package models

import "time"

// Plan is a purchasable subscription tier from the catalog.
// SpecialPrice, when set, takes precedence over Price at order time.
type Plan struct {
	ID             string     `json:"id"`
	PlanID         string     `json:"planId"`
	PlanName       string     `json:"planName"`
	Description    string     `json:"description"`
	Price          int        `json:"price"`
	SpecialPrice   *int       `json:"specialPrice,omitempty"`
	DurationMonths int        `json:"duration"`
	MaxMembers     int        `json:"maxMembers"`
	Features       []string   `json:"features"`
	IsActive       bool       `json:"isActive"`
	IsSpecialOffer bool       `json:"isSpecialOffer"`
	ValidFrom      *time.Time `json:"validFrom,omitempty"`
	ValidTo        *time.Time `json:"validTo,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// OrderAmount returns the price a new order for this plan should carry.
func (p *Plan) OrderAmount() int {
	if p.SpecialPrice != nil {
		return *p.SpecialPrice
	}
	return p.Price
}
