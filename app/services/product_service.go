package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/pkg/apperr"
)

type CreateProductInput struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description"`
	Price       *float64       `json:"price" validate:"required,gte=0"`
	Stock       *int           `json:"stock" validate:"omitnil,gte=0"`
	Images      []string       `json:"images"`
	Meta        map[string]any `json:"meta"`
}

// UpdateProductInput carries the whitelisted mutable fields.
type UpdateProductInput struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Price       *float64       `json:"price" validate:"omitnil,gte=0"`
	Stock       *int           `json:"stock" validate:"omitnil,gte=0"`
	Images      *[]string      `json:"images"`
	Meta        map[string]any `json:"meta"`
}

type ProductService struct {
	products *repositories.ProductRepository
	shops    *repositories.ShopRepository
	now      Clock
}

func NewProductService(products *repositories.ProductRepository, shops *repositories.ShopRepository, now Clock) *ProductService {
	return &ProductService{products: products, shops: shops, now: now}
}

func (s *ProductService) ListForShop(ctx context.Context, shopID string) ([]models.Product, error) {
	sid, err := parseID("shop", shopID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListByShop(ctx, sid)
	if err != nil {
		return nil, classify("product", "list", err)
	}
	return products, nil
}

// Create adds a product to an existing shop.
func (s *ProductService) Create(ctx context.Context, shopID string, in CreateProductInput) (*models.Product, error) {
	sid, err := parseID("shop", shopID)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}

	exists, err := s.shops.Exists(ctx, sid)
	if err != nil {
		return nil, classify("shop", "load", err)
	}
	if !exists {
		return nil, apperr.NotFound("shop")
	}

	product := &models.Product{
		ShopID:      sid,
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Images:      in.Images,
		Meta:        bson.M(in.Meta),
		CreatedAt:   s.now(),
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, classify("product", "create", err)
	}
	return product, nil
}

// Update changes a product of shopID. A product that exists under another
// shop is reported as not found.
func (s *ProductService) Update(ctx context.Context, shopID, productID string, in UpdateProductInput) (*models.Product, error) {
	sid, err := parseID("shop", shopID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}

	set := repositories.Set{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation(map[string]string{"name": "The name field is required."})
		}
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.Stock != nil {
		set["stock"] = *in.Stock
	}
	if in.Images != nil {
		images := *in.Images
		if images == nil {
			images = []string{}
		}
		set["images"] = images
	}
	if in.Meta != nil {
		set["meta"] = bson.M(in.Meta)
	}
	if len(set) == 0 {
		return nil, apperr.InvalidInput("nothing to update")
	}

	matched, err := s.products.UpdateInShop(ctx, pid, sid, set, s.now())
	if err != nil {
		return nil, classify("product", "update", err)
	}
	if !matched {
		return nil, apperr.NotFound("product")
	}

	product, err := s.products.FindInShop(ctx, pid, sid)
	if err != nil {
		return nil, classify("product", "load", err)
	}
	return product, nil
}
