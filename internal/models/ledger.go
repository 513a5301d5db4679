package models

import "time"

// OfferStatus is the current state of a buyer's offer.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "Pending"
	OfferStatusAccepted  OfferStatus = "Accepted"
	OfferStatusRejected  OfferStatus = "Rejected"
	OfferStatusCountered OfferStatus = "Countered"
)

// Terminal reports whether no further transition is allowed from s.
// Countered is not terminal: it re-arms the offer awaiting a new amount.
func (s OfferStatus) Terminal() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected
}

// OfferTransition records one status change. History is append-only.
type OfferTransition struct {
	Status OfferStatus `json:"status"`
	At     time.Time   `json:"at"`
}

// Offer is a buyer-submitted bid against a listing.
type Offer struct {
	ID        string            `json:"id"`
	BuyerID   string            `json:"buyer_id"`
	BuyerName string            `json:"buyer_name"`
	Amount    float64           `json:"amount"`
	Status    OfferStatus       `json:"status"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
	History   []OfferTransition `json:"history,omitempty"`
}

// Clone returns a copy with its own history slice.
func (o Offer) Clone() Offer {
	out := o
	if o.History != nil {
		out.History = append([]OfferTransition(nil), o.History...)
	}
	return out
}

// ViewingStatus is the current state of a scheduled visit.
type ViewingStatus string

const (
	ViewingStatusScheduled ViewingStatus = "Scheduled"
	ViewingStatusCompleted ViewingStatus = "Completed"
	ViewingStatusCancelled ViewingStatus = "Cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s ViewingStatus) Terminal() bool {
	return s == ViewingStatusCompleted || s == ViewingStatusCancelled
}

// ViewingTransition records one status change. History is append-only.
type ViewingTransition struct {
	Status ViewingStatus `json:"status"`
	At     time.Time     `json:"at"`
}

// Viewing is a scheduled visit request against a listing.
type Viewing struct {
	ID       string              `json:"id"`
	UserID   string              `json:"user_id"`
	UserName string              `json:"user_name"`
	Date     string              `json:"date"`
	Time     string              `json:"time"`
	Status   ViewingStatus       `json:"status"`
	Notes    string              `json:"notes,omitempty"`
	History  []ViewingTransition `json:"history,omitempty"`
}

// Clone returns a copy with its own history slice.
func (v Viewing) Clone() Viewing {
	out := v
	if v.History != nil {
		out.History = append([]ViewingTransition(nil), v.History...)
	}
	return out
}
