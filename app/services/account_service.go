package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/workflow"
	"github.com/vancyferns/near2door/pkg/apperr"
	"github.com/vancyferns/near2door/pkg/event"
	"github.com/vancyferns/near2door/pkg/logger"
	"github.com/vancyferns/near2door/pkg/store"
)

// TokenPrefix starts every login token. Tokens are informational only and
// are not checked on later requests.
const TokenPrefix = "near2door-token-"

type RegisterInput struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required"`
	Password string         `json:"password" validate:"required"`
	Role     string         `json:"role"`
	Meta     map[string]any `json:"meta"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a successful login.
type LoginResult struct {
	Token   string
	Account *models.Account
}

type AccountService struct {
	accounts *repositories.AccountRepository
	shops    *repositories.ShopRepository
	events   *event.Bus
	now      Clock
}

func NewAccountService(accounts *repositories.AccountRepository, shops *repositories.ShopRepository, events *event.Bus, now Clock) *AccountService {
	return &AccountService{accounts: accounts, shops: shops, events: events, now: now}
}

// Register creates an account. A shop account gets a pending shop created
// first and linked through shop_id; shop and agent accounts start pending.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	role, err := workflow.ParseRole(in.Role)
	if err != nil {
		return nil, apperr.InvalidInput("invalid role %q: must be one of customer, shop, agent", in.Role)
	}

	_, err = s.accounts.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("Email already registered")
	case !errors.Is(err, store.ErrNotFound):
		return nil, classify("user", "look up", err)
	}

	now := s.now()
	account := &models.Account{
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		Role:      role,
		Status:    workflow.InitialAccountStatus(role),
		Meta:      bson.M(in.Meta),
		CreatedAt: now,
	}

	var shop *models.Shop
	if role == workflow.RoleShop {
		shop = &models.Shop{
			Name:      shopName(in),
			Status:    workflow.ShopPending,
			CreatedAt: now,
		}
		if err := s.shops.Create(ctx, shop); err != nil {
			return nil, classify("shop", "create", err)
		}
		account.ShopID = &shop.ID
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, classify("user", "create", err)
	}

	log := logger.WithCtx(ctx)
	if shop != nil {
		if err := s.shops.SetOwner(ctx, shop.ID, account.ID, now); err != nil {
			log.Warn("shop owner back-fill failed", "shop_id", shop.ID.Hex(), "user_id", account.ID.Hex(), "error", err)
		} else {
			shop.OwnerID = &account.ID
		}
		s.events.Fire(ctx, event.ShopCreated, shop)
	}

	log.Info("account registered", "user_id", account.ID.Hex(), "role", role)
	s.events.Fire(ctx, event.AccountRegistered, account)
	return account, nil
}

// Login checks credentials by exact match and refuses pending accounts.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, classify("user", "look up", err)
	}
	if account.Password != in.Password {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := workflow.CanLogin(account.Status); err != nil {
		return nil, apperr.Forbidden("account pending approval")
	}

	return &LoginResult{Token: Token(account), Account: account}, nil
}

// Token is the opaque login token for a.
func Token(a *models.Account) string {
	return TokenPrefix + a.ID.Hex()
}

// Get returns one account.
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	oid, err := parseID("user", id)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByID(ctx, oid)
	if err != nil {
		return nil, classify("user", "load", err)
	}
	return account, nil
}

// Approve marks a shop or agent account approved.
func (s *AccountService) Approve(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := workflow.ApproveAccount(account.Role)
	if err != nil {
		return nil, apperr.InvalidInput("only shop and agent accounts can be approved")
	}

	now := s.now()
	matched, err := s.accounts.SetStatus(ctx, account.ID, status, now)
	if err != nil {
		return nil, classify("user", "approve", err)
	}
	if !matched {
		return nil, apperr.NotFound("user")
	}

	account.Status = status
	account.UpdatedAt = &now
	logger.WithCtx(ctx).Info("account approved", "user_id", account.ID.Hex(), "role", account.Role)
	s.events.Fire(ctx, event.AccountApproved, account)
	return account, nil
}

// shopName prefers meta.shop_name for the linked shop, falling back to the
// account name.
func shopName(in RegisterInput) string {
	if name, ok := in.Meta["shop_name"].(string); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return in.Name
}
