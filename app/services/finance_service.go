package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/pkg/logger"
)

// CommissionRate is the platform's share of order revenue.
var CommissionRate = decimal.RequireFromString("0.10")

const summaryTTL = 30 * time.Second

// Summary is the admin finance overview.
type Summary struct {
	TotalOrders     int     `json:"totalOrders" bson:"totalOrders"`
	TotalRevenue    float64 `json:"totalRevenue" bson:"totalRevenue"`
	TotalCommission float64 `json:"totalCommission" bson:"totalCommission"`
	TotalPayouts    float64 `json:"totalPayouts" bson:"totalPayouts"`
}

type FinanceService struct {
	orders   *repositories.OrderRepository
	finances *repositories.FinanceRepository
	cache    Cache
}

func NewFinanceService(orders *repositories.OrderRepository, finances *repositories.FinanceRepository, cache Cache) *FinanceService {
	return &FinanceService{orders: orders, finances: finances, cache: cache}
}

// Summary aggregates every order and payout. Results are cached briefly;
// order writes invalidate the entry.
func (s *FinanceService) Summary(ctx context.Context) (*Summary, error) {
	var cached Summary
	if s.cache.Get(ctx, financeSummaryKey, &cached) {
		return &cached, nil
	}

	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, classify("order", "list", err)
	}
	records, err := s.finances.All(ctx)
	if err != nil {
		return nil, classify("finance record", "list", err)
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(o.TotalPrice))
	}
	payouts := decimal.Zero
	for _, r := range records {
		payouts = payouts.Add(decimal.NewFromFloat(r.Amount))
	}

	sum := &Summary{TotalOrders: len(orders)}
	sum.TotalRevenue, _ = revenue.Round(2).Float64()
	sum.TotalCommission, _ = revenue.Mul(CommissionRate).Round(2).Float64()
	sum.TotalPayouts, _ = payouts.Round(2).Float64()

	if err := s.cache.Set(ctx, financeSummaryKey, sum, summaryTTL); err != nil {
		logger.WithCtx(ctx).Warn("finance summary not cached", "error", err)
	}
	return sum, nil
}
