package domain

import (
	"context"
	"time"
)

// Client is a customer of a business
type Client struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"businessId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	Address    *string   `json:"address"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ClientInput carries the editable fields of a client
type ClientInput struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Notes     *string `json:"notes"`
}

// Apply copies the input onto the client.
func (in ClientInput) Apply(c *Client) {
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.Notes = in.Notes
}

// ClientRepository is tenant-scoped: every method takes the business id and
// filters on it together with the record id. A client owned by another
// business yields ErrNotFound.
type ClientRepository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, businessID, id string) (*Client, error)
	List(ctx context.Context, businessID string) ([]*Client, error)
	Update(ctx context.Context, client *Client) error
	Delete(ctx context.Context, businessID, id string) error
}
