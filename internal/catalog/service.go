package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/internal/pricing"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
)

// ProductDTO is the public shape of a catalog entry. Prices cross the API
// boundary as integer paise.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	PricePaise  int64     `json:"price_paise"`
	Veg         bool      `json:"veg"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Available   bool      `json:"available"`
}

// ListResultDTO pairs a product page with its continuation cursor.
type ListResultDTO struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CreateProductInput captures the admin create payload.
type CreateProductInput struct {
	Name        string   `json:"name" validate:"required,max=160"`
	Slug        string   `json:"slug" validate:"omitempty,max=160"`
	Description string   `json:"description" validate:"max=2000"`
	Category    string   `json:"category" validate:"required,max=80"`
	PricePaise  int64    `json:"price_paise" validate:"required,gt=0"`
	Veg         bool     `json:"veg"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,url"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=40"`
	Available   *bool    `json:"available"`
}

// UpdateProductInput captures the admin update payload. Nil fields are
// left unchanged.
type UpdateProductInput struct {
	Name        *string  `json:"name" validate:"omitempty,max=160"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Category    *string  `json:"category" validate:"omitempty,max=80"`
	PricePaise  *int64   `json:"price_paise" validate:"omitempty,gt=0"`
	Veg         *bool    `json:"veg"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,url"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	Available   *bool    `json:"available"`
}

// Service exposes the storefront catalog plus the admin CRUD surface.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResultDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     Repository
	dbClient *db.Client
}

// NewService validates dependencies and builds the catalog service.
func NewService(repo Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResultDTO, error) {
	page, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list products")
	}

	out := &ListResultDTO{
		Products:   make([]ProductDTO, 0, len(page.Products)),
		NextCursor: page.NextCursor,
	}
	for _, product := range page.Products {
		out.Products = append(out.Products, toDTO(product))
	}
	return out, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load product")
	}
	if product == nil || !product.Available {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := toDTO(*product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	slug := input.Slug
	if slug == "" {
		slug = Slugify(input.Name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name must contain letters or digits")
	}

	available := true
	if input.Available != nil {
		available = *input.Available
	}
	product := &models.Product{
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Category:    input.Category,
		PriceAmount: decimal.New(input.PricePaise, -2),
		Veg:         input.Veg,
		ImageURL:    input.ImageURL,
		Tags:        input.Tags,
		Available:   available,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a product with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create product")
	}
	dto := toDTO(*product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.PricePaise != nil {
		product.PriceAmount = decimal.New(*input.PricePaise, -2)
	}
	if input.Veg != nil {
		product.Veg = *input.Veg
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.Available != nil {
		product.Available = *input.Available
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update product")
	}
	dto := toDTO(*product)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load product")
	}
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete product")
	}
	return nil
}

func toDTO(product models.Product) ProductDTO {
	return ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		Category:    product.Category,
		PricePaise:  pricing.ToPaise(product.PriceAmount),
		Veg:         product.Veg,
		ImageURL:    product.ImageURL,
		Tags:        product.Tags,
		Available:   product.Available,
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses non-alphanumeric runs to
// single hyphens.
func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
