package domain

import (
	"context"
	"time"
)

// MaxServicePrice is the upper bound accepted for a catalog price.
const MaxServicePrice = 999999.99

// ServiceCategories lists the catalog categories offered in the forms.
var ServiceCategories = []string{
	"soin_visage",
	"soin_corps",
	"epilation",
	"massage",
	"maquillage",
	"manucure",
	"autre",
}

// Service is a catalog entry a business bills for
type Service struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"businessId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Duration    *int      `json:"duration"` // minutes
	Category    *string   `json:"category"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ServiceInput carries the editable fields of a service
type ServiceInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Duration    *int    `json:"duration"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"isActive"`
}

// Apply copies the input onto the service. A missing active flag means active.
func (in ServiceInput) Apply(s *Service) {
	s.Name = in.Name
	s.Description = in.Description
	s.Price = in.Price
	s.Duration = in.Duration
	s.Category = in.Category
	s.IsActive = in.IsActive == nil || *in.IsActive
}

// ServiceRepository is tenant-scoped like ClientRepository.
type ServiceRepository interface {
	Create(ctx context.Context, service *Service) error
	GetByID(ctx context.Context, businessID, id string) (*Service, error)
	List(ctx context.Context, businessID string, activeOnly bool) ([]*Service, error)
	Update(ctx context.Context, service *Service) error
	Delete(ctx context.Context, businessID, id string) error
}
