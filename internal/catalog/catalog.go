package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MessageFieldsRequired = "All fields are required"
	MessagePriceInvalid   = "Price must be a positive number"
)

var ErrInvalidProduct = errors.New("invalid product")

// InvalidProductError is returned by Create for input the catalog refuses.
type InvalidProductError struct {
	Message string
}

func (e *InvalidProductError) Error() string {
	return e.Message
}

func (e *InvalidProductError) Is(target error) bool {
	return target == ErrInvalidProduct
}

type ProductStore interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListAIProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
}

// NewProduct is the admin's input. Price is kept as text so a missing price
// and a malformed one can be reported differently.
type NewProduct struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"imageUrl"`
}

type Service struct {
	store ProductStore
	now   func() time.Time
	newID func() string
}

func NewService(store ProductStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: func() string { return "prod-" + uuid.NewString() },
	}
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.store.ListProducts(ctx)
}

// ListAI returns the AI subscription products.
func (s *Service) ListAI(ctx context.Context) ([]*domain.Product, error) {
	return s.store.ListAIProducts(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) Create(ctx context.Context, in NewProduct) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	rawPrice := strings.TrimSpace(in.Price)
	imageURL := strings.TrimSpace(in.ImageURL)

	if name == "" || description == "" || rawPrice == "" || imageURL == "" {
		return nil, &InvalidProductError{Message: MessageFieldsRequired}
	}

	price, err := decimal.NewFromString(rawPrice)
	if err != nil || !price.IsPositive() {
		return nil, &InvalidProductError{Message: MessagePriceInvalid}
	}

	p := &domain.Product{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		Price:       price.Round(2),
		ImageURL:    imageURL,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
