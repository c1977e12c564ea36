package domain

import (
	"context"
	"math"
	"time"
)

// QuoteStatus is the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
)

// quoteTransitions lists the statuses reachable from each status.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteDraft: {QuoteSent},
	QuoteSent:  {QuoteAccepted, QuoteRejected, QuoteDraft},
}

// CanTransition reports whether a quote may move from s to next.
func (s QuoteStatus) CanTransition(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Quote ("devis") addressed to one client of a business
type Quote struct {
	ID         string      `json:"id"`
	BusinessID string      `json:"businessId"`
	ClientID   string      `json:"clientId"`
	Number     string      `json:"number"`
	Status     QuoteStatus `json:"status"`
	ValidUntil *time.Time  `json:"validUntil"`
	Notes      *string     `json:"notes"`
	Total      float64     `json:"total"`
	Items      []QuoteItem `json:"items"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// QuoteItem is one billed line
type QuoteItem struct {
	ID          string  `json:"id"`
	ServiceID   *string `json:"serviceId"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// LineTotal is quantity times unit price.
func (i QuoteItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// ComputeTotal sums the lines, rounded to the cent.
func (q *Quote) ComputeTotal() float64 {
	var total float64
	for _, item := range q.Items {
		total += item.LineTotal()
	}
	q.Total = math.Round(total*100) / 100
	return q.Total
}

// QuoteItemInput describes a line. When ServiceID is set, description and
// unit price default to the catalog entry.
type QuoteItemInput struct {
	ServiceID   *string  `json:"serviceId"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
}

// QuoteInput is the payload for creating a quote
type QuoteInput struct {
	ClientID   string           `json:"clientId"`
	ValidUntil *time.Time       `json:"validUntil"`
	Notes      *string          `json:"notes"`
	Items      []QuoteItemInput `json:"items"`
}

// QuoteRepository is tenant-scoped like ClientRepository.
type QuoteRepository interface {
	Create(ctx context.Context, quote *Quote) error
	GetByID(ctx context.Context, businessID, id string) (*Quote, error)
	List(ctx context.Context, businessID string) ([]*Quote, error)
	UpdateStatus(ctx context.Context, businessID, id string, status QuoteStatus) error
	Delete(ctx context.Context, businessID, id string) error
	CountForYear(ctx context.Context, businessID string, year int) (int, error)
}
