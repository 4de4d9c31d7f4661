package services

import (
	"context"
	"errors"
	"sync"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/workflow"
	"github.com/vancyferns/near2door/pkg/event"
	"github.com/vancyferns/near2door/pkg/logger"
	"github.com/vancyferns/near2door/pkg/store"
	"github.com/vancyferns/near2door/pkg/workerpool"
)

// Repair kinds fired by the reconcile pass.
const (
	RepairOwnerApproved = "owner_approved"
	RepairOwnerLinked   = "owner_linked"
)

// Repair is the payload of event.ReconcileRepaired.
type Repair struct {
	Kind string
	ID   string
}

// Report summarises one reconcile pass.
type Report struct {
	OwnersApproved []string `json:"owners_approved" bson:"owners_approved"`
	OwnersLinked   []string `json:"owners_linked" bson:"owners_linked"`
	OrphanShops    []string `json:"orphan_shops" bson:"orphan_shops"`
	Failures       int      `json:"failures" bson:"failures"`
}

// ReconcileService finishes the multi-step workflows that are not atomic:
// shop approval cascading to the owner account, and the owner_id back-fill
// after a shop registration.
type ReconcileService struct {
	accounts *repositories.AccountRepository
	shops    *repositories.ShopRepository
	events   *event.Bus
	now      Clock
	workers  int
}

func NewReconcileService(accounts *repositories.AccountRepository, shops *repositories.ShopRepository, events *event.Bus, now Clock, workers int) *ReconcileService {
	return &ReconcileService{accounts: accounts, shops: shops, events: events, now: now, workers: workers}
}

// Run performs one pass. It approves pending shop owners whose shop is
// already open, links ownerless shops to the account that references them
// and reports pending shops no account references. Orphans are reported,
// not repaired, so they fire no event.
func (s *ReconcileService) Run(ctx context.Context) (*Report, error) {
	report := &Report{OwnersApproved: []string{}, OwnersLinked: []string{}, OrphanShops: []string{}}
	var mu sync.Mutex
	record := func(kind, id string) {
		mu.Lock()
		defer mu.Unlock()
		switch kind {
		case RepairOwnerApproved:
			report.OwnersApproved = append(report.OwnersApproved, id)
		case RepairOwnerLinked:
			report.OwnersLinked = append(report.OwnersLinked, id)
		}
		s.events.Fire(ctx, event.ReconcileRepaired, Repair{Kind: kind, ID: id})
	}
	fail := func() {
		mu.Lock()
		report.Failures++
		mu.Unlock()
	}

	pending, err := s.accounts.ListPendingShopOwners(ctx)
	if err != nil {
		return nil, classify("user", "list", err)
	}

	pool := workerpool.New(s.workers)
	defer pool.Shutdown()

	log := logger.WithCtx(ctx)
	for _, acc := range pending {
		acc := acc
		if acc.ShopID == nil {
			continue
		}
		err := pool.SubmitWait(ctx, func() {
			approved, err := s.approveOwner(ctx, acc)
			if err != nil {
				log.Warn("reconcile: owner approval failed", "user_id", acc.ID.Hex(), "error", err)
				fail()
				return
			}
			if approved {
				record(RepairOwnerApproved, acc.ID.Hex())
			}
		})
		if err != nil {
			break
		}
	}
	pool.Wait()
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, status := range []workflow.ShopStatus{workflow.ShopPending, workflow.ShopOpen, workflow.ShopClosed} {
		shops, err := s.shops.ListWithoutOwner(ctx, status)
		if err != nil {
			return report, classify("shop", "list", err)
		}
		for _, shop := range shops {
			linked, err := s.linkOwner(ctx, shop)
			if err != nil {
				log.Warn("reconcile: owner link failed", "shop_id", shop.ID.Hex(), "error", err)
				fail()
				continue
			}
			switch {
			case linked:
				record(RepairOwnerLinked, shop.ID.Hex())
			case status == workflow.ShopPending:
				report.OrphanShops = append(report.OrphanShops, shop.ID.Hex())
			}
		}
	}

	log.Info("reconcile pass finished",
		"owners_approved", len(report.OwnersApproved),
		"owners_linked", len(report.OwnersLinked),
		"orphan_shops", len(report.OrphanShops),
		"failures", report.Failures,
	)
	return report, nil
}

func (s *ReconcileService) approveOwner(ctx context.Context, acc models.Account) (bool, error) {
	shop, err := s.shops.FindByID(ctx, *acc.ShopID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if shop.Status != workflow.ShopOpen {
		return false, nil
	}
	return s.accounts.SetStatus(ctx, acc.ID, workflow.AccountApproved, s.now())
}

// linkOwner sets owner_id from the account that references shop. It
// reports false when no account does.
func (s *ReconcileService) linkOwner(ctx context.Context, shop models.Shop) (bool, error) {
	owner, err := s.accounts.FindByShop(ctx, shop.ID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.shops.SetOwner(ctx, shop.ID, owner.ID, s.now()); err != nil {
		return false, err
	}
	return true, nil
}
