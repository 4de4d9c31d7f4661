// Package workflow holds the role and status rules of the marketplace:
// which roles exist, which accounts need approval before they can log in,
// which shop status changes are legal, and which order statuses the server
// itself writes.
//
// Account lifecycle:
//
//	customer: (none) ─────────────────────────► can log in
//	shop:     pending ──approve shop──► approved ─► can log in
//	agent:    pending ──approve user──► approved ─► can log in
//
// Shop lifecycle:
//
//	pending ──approve──► open ◄──owner──► closed
package workflow

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRole       = errors.New("workflow: invalid role")
	ErrNotApprovable     = errors.New("workflow: role does not require approval")
	ErrPendingApproval   = errors.New("workflow: account pending approval")
	ErrInvalidShopStatus = errors.New("workflow: invalid shop status")
	ErrIllegalTransition = errors.New("workflow: illegal status transition")
	ErrEmptyOrderStatus  = errors.New("workflow: empty order status")
)

// ─── Roles & accounts ─────────────────────────────────────────────────────────

type Role string

const (
	RoleCustomer Role = "customer"
	RoleShop     Role = "shop"
	RoleAgent    Role = "agent"
)

// ParseRole accepts a role name; the empty string means customer.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case "":
		return RoleCustomer, nil
	case RoleCustomer, RoleShop, RoleAgent:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// RequiresApproval reports whether accounts of r start pending.
func (r Role) RequiresApproval() bool {
	return r == RoleShop || r == RoleAgent
}

type AccountStatus string

const (
	AccountNone     AccountStatus = ""
	AccountPending  AccountStatus = "pending"
	AccountApproved AccountStatus = "approved"
)

// InitialAccountStatus is the status a fresh account of role r gets.
func InitialAccountStatus(r Role) AccountStatus {
	if r.RequiresApproval() {
		return AccountPending
	}
	return AccountNone
}

// CanLogin rejects accounts still waiting for approval.
func CanLogin(status AccountStatus) error {
	if status == AccountPending {
		return ErrPendingApproval
	}
	return nil
}

// ApproveAccount returns the status after an approval of an account with
// role r. Customers have nothing to approve.
func ApproveAccount(r Role) (AccountStatus, error) {
	if !r.RequiresApproval() {
		return "", ErrNotApprovable
	}
	return AccountApproved, nil
}

// ─── Shops ────────────────────────────────────────────────────────────────────

type ShopStatus string

const (
	ShopPending ShopStatus = "pending"
	ShopOpen    ShopStatus = "open"
	ShopClosed  ShopStatus = "closed"
)

// ParseShopStatus validates a shop status name.
func ParseShopStatus(s string) (ShopStatus, error) {
	switch st := ShopStatus(strings.TrimSpace(s)); st {
	case ShopPending, ShopOpen, ShopClosed:
		return st, nil
	default:
		return "", ErrInvalidShopStatus
	}
}

// ShopTransition checks an owner-driven status change. Opening a pending
// shop is reserved for ApproveShop and no shop can go back to pending.
func ShopTransition(from, to ShopStatus) error {
	if from == to {
		return nil
	}
	switch {
	case to == ShopPending:
		return ErrIllegalTransition
	case from == ShopPending:
		return ErrIllegalTransition
	case from == ShopOpen && to == ShopClosed, from == ShopClosed && to == ShopOpen:
		return nil
	default:
		return ErrIllegalTransition
	}
}

// ApproveShop is the admin approval: any shop becomes open and its owner
// account, if any, becomes approved.
func ApproveShop(ShopStatus) (ShopStatus, AccountStatus) {
	return ShopOpen, AccountApproved
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// Order statuses the server writes itself. Callers may write any other
// non-empty status through the status endpoints.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderDelivered = "delivered"
)

// NormalizeOrderStatus trims s and rejects the empty string.
func NormalizeOrderStatus(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyOrderStatus
	}
	return s, nil
}

// IsDelivered reports whether status marks the end of a delivery, which
// books the agent's payout.
func IsDelivered(status string) bool {
	return strings.EqualFold(status, OrderDelivered)
}
