package services

import (
	"context"
	"strings"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/workflow"
)

// Earnings figures that are not derived from data yet.
// TODO: replace with sums over finance records and order delivery times once
// orders carry pickup and drop-off timestamps.
const (
	MockTotalEarnings       = 1250.0
	MockAverageDeliveryTime = "25 mins"
)

// Earnings is the agent earnings summary.
type Earnings struct {
	TotalEarnings       float64 `json:"totalEarnings" bson:"totalEarnings"`
	TotalDeliveries     int64   `json:"totalDeliveries" bson:"totalDeliveries"`
	AverageDeliveryTime string  `json:"averageDeliveryTime" bson:"averageDeliveryTime"`
}

// AgentService reads agent accounts and their payouts. Agents are accounts
// with role agent.
type AgentService struct {
	accounts *repositories.AccountRepository
	finances *repositories.FinanceRepository
}

func NewAgentService(accounts *repositories.AccountRepository, finances *repositories.FinanceRepository) *AgentService {
	return &AgentService{accounts: accounts, finances: finances}
}

// List is the public listing: approved agents unless status says otherwise.
func (s *AgentService) List(ctx context.Context, status string) ([]models.Account, error) {
	if status == "" {
		status = string(workflow.AccountApproved)
	}
	return s.list(ctx, status)
}

// AdminList lists agents in every status unless status narrows it.
func (s *AgentService) AdminList(ctx context.Context, status string) ([]models.Account, error) {
	return s.list(ctx, status)
}

func (s *AgentService) list(ctx context.Context, status string) ([]models.Account, error) {
	st := workflow.AccountStatus(strings.TrimSpace(status))
	agents, err := s.accounts.ListByRole(ctx, workflow.RoleAgent, st)
	if err != nil {
		return nil, classify("agent", "list", err)
	}
	return agents, nil
}

// Earnings counts the payouts booked for agentID.
func (s *AgentService) Earnings(ctx context.Context, agentID string) (*Earnings, error) {
	aid, err := parseID("agent", agentID)
	if err != nil {
		return nil, err
	}
	n, err := s.finances.CountByAgent(ctx, aid)
	if err != nil {
		return nil, classify("finance record", "count", err)
	}
	return &Earnings{
		TotalEarnings:       MockTotalEarnings,
		TotalDeliveries:     n,
		AverageDeliveryTime: MockAverageDeliveryTime,
	}, nil
}
