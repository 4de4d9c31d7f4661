package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/workflow"
	"github.com/vancyferns/near2door/pkg/apperr"
	"github.com/vancyferns/near2door/pkg/event"
	"github.com/vancyferns/near2door/pkg/logger"
)

type SubscriptionInput struct {
	Active bool   `json:"active"`
	Status string `json:"status"`
	Plan   string `json:"plan"`
}

// CreateShopInput is the body of POST /shops. New shops always start
// pending, whatever status the caller sends.
type CreateShopInput struct {
	Name         string             `json:"name" validate:"required"`
	OwnerID      string             `json:"owner_id"`
	Type         string             `json:"type"`
	Location     string             `json:"location"`
	Subscription *SubscriptionInput `json:"subscription"`
	ProfileImage string             `json:"profile_image"`
	Meta         map[string]any     `json:"meta"`
}

// UpdateShopInput carries the whitelisted mutable fields. Nil means
// "leave unchanged". ProfileImageCamel is the camelCase alias some clients
// send.
type UpdateShopInput struct {
	Name              *string `json:"name"`
	Type              *string `json:"type"`
	Location          *string `json:"location"`
	Status            *string `json:"status"`
	ProfileImage      *string `json:"profile_image"`
	ProfileImageCamel *string `json:"profileImage"`
}

// ShopDetail is a shop with its current catalogue embedded.
type ShopDetail struct {
	models.Shop `bson:",inline"`
	Products    []models.Product `bson:"products"`
}

type ShopService struct {
	shops    *repositories.ShopRepository
	products *repositories.ProductRepository
	accounts *repositories.AccountRepository
	events   *event.Bus
	now      Clock
}

func NewShopService(shops *repositories.ShopRepository, products *repositories.ProductRepository, accounts *repositories.AccountRepository, events *event.Bus, now Clock) *ShopService {
	return &ShopService{shops: shops, products: products, accounts: accounts, events: events, now: now}
}

// List is the public listing: open shops unless status says otherwise.
func (s *ShopService) List(ctx context.Context, status string) ([]models.Shop, error) {
	if status == "" {
		status = string(workflow.ShopOpen)
	}
	return s.list(ctx, status, "")
}

// AdminList filters on status and subscription.status with no default.
// Statuses are matched as given; an unknown one lists nothing.
func (s *ShopService) AdminList(ctx context.Context, status, subscription string) ([]models.Shop, error) {
	return s.list(ctx, status, subscription)
}

func (s *ShopService) list(ctx context.Context, status, subscription string) ([]models.Shop, error) {
	filter := repositories.ShopFilter{
		Status:       workflow.ShopStatus(strings.TrimSpace(status)),
		Subscription: strings.TrimSpace(subscription),
	}

	shops, err := s.shops.List(ctx, filter)
	if err != nil {
		return nil, classify("shop", "list", err)
	}
	return shops, nil
}

func (s *ShopService) Create(ctx context.Context, in CreateShopInput) (*models.Shop, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	owner, err := parseOptionalID("owner", in.OwnerID)
	if err != nil {
		return nil, err
	}

	shop := &models.Shop{
		Name:         in.Name,
		OwnerID:      owner,
		Type:         in.Type,
		Location:     in.Location,
		Status:       workflow.ShopPending,
		ProfileImage: in.ProfileImage,
		Meta:         bson.M(in.Meta),
		CreatedAt:    s.now(),
	}
	if in.Subscription != nil {
		shop.Subscription = models.Subscription(*in.Subscription)
	}

	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, classify("shop", "create", err)
	}
	s.events.Fire(ctx, event.ShopCreated, shop)
	return shop, nil
}

// Get returns the shop with its products embedded.
func (s *ShopService) Get(ctx context.Context, id string) (*ShopDetail, error) {
	shop, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.products.ListByShop(ctx, shop.ID)
	if err != nil {
		return nil, classify("product", "list", err)
	}
	return &ShopDetail{Shop: *shop, Products: products}, nil
}

// Update applies the whitelisted fields. Status changes go through
// workflow.ShopTransition.
func (s *ShopService) Update(ctx context.Context, id string, in UpdateShopInput) (*models.Shop, error) {
	shop, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	set := repositories.Set{}
	errs := map[string]string{}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			errs["name"] = "The name field is required."
		}
		set["name"] = *in.Name
	}
	if in.Type != nil {
		set["type"] = *in.Type
	}
	if in.Location != nil {
		set["location"] = *in.Location
	}
	if img := firstNonNil(in.ProfileImage, in.ProfileImageCamel); img != nil {
		set["profile_image"] = *img
	}
	if in.Status != nil {
		to, err := workflow.ParseShopStatus(*in.Status)
		if err != nil {
			errs["status"] = "The status must be one of: pending, open, closed."
		} else if err := workflow.ShopTransition(shop.Status, to); err != nil {
			return nil, apperr.InvalidInput("cannot change shop status from %s to %s", shop.Status, to)
		} else {
			set["status"] = string(to)
		}
	}

	if len(errs) > 0 {
		return nil, apperr.Validation(errs)
	}
	if len(set) == 0 {
		return nil, apperr.InvalidInput("nothing to update")
	}

	matched, err := s.shops.Update(ctx, shop.ID, set, s.now())
	if err != nil {
		return nil, classify("shop", "update", err)
	}
	if !matched {
		return nil, apperr.NotFound("shop")
	}
	return s.reload(ctx, shop)
}

// Approve opens the shop, resets its subscription to inactive and then
// approves the account linked to it. The two writes are not atomic: when
// the account write fails the shop stays open and the error is returned;
// the reconcile pass finishes the cascade later.
func (s *ShopService) Approve(ctx context.Context, id string) (*models.Shop, error) {
	shop, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	shopStatus, ownerStatus := workflow.ApproveShop(shop.Status)
	now := s.now()

	matched, err := s.shops.Update(ctx, shop.ID, repositories.Set{
		"status":              string(shopStatus),
		"subscription.active": false,
	}, now)
	if err != nil {
		return nil, classify("shop", "approve", err)
	}
	if !matched {
		return nil, apperr.NotFound("shop")
	}

	log := logger.WithCtx(ctx).With("shop_id", shop.ID.Hex())
	ownerApproved, err := s.accounts.SetStatusByShop(ctx, shop.ID, ownerStatus, now)
	if err != nil {
		log.Error("shop approved but owner approval failed", "error", err)
		return nil, apperr.Internal("shop approved but owner account update failed", err)
	}
	log.Info("shop approved", "owner_approved", ownerApproved)

	approved, err := s.reload(ctx, shop)
	if err != nil {
		return nil, err
	}
	s.events.Fire(ctx, event.ShopApproved, approved)
	return approved, nil
}

func (s *ShopService) find(ctx context.Context, id string) (*models.Shop, error) {
	oid, err := parseID("shop", id)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.FindByID(ctx, oid)
	if err != nil {
		return nil, classify("shop", "load", err)
	}
	return shop, nil
}

func (s *ShopService) reload(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	fresh, err := s.shops.FindByID(ctx, shop.ID)
	if err != nil {
		return nil, classify("shop", "load", err)
	}
	return fresh, nil
}

func firstNonNil(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
