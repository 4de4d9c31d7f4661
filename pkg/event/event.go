// Package event is a small in-process dispatcher for domain events. Services
// fire events after a write succeeds; listeners registered at boot (metrics,
// audit logging) react to them.
package event

import (
	"context"
	"sync"
)

// Name identifies a domain event.
type Name string

const (
	AccountRegistered  Name = "account.registered"
	AccountApproved    Name = "account.approved"
	ShopCreated        Name = "shop.created"
	ShopApproved       Name = "shop.approved"
	OrderCreated       Name = "order.created"
	OrderStatusChanged Name = "order.status_changed"
	ReconcileRepaired  Name = "reconcile.repaired"
)

// Handler receives the payload of a fired event.
type Handler func(ctx context.Context, payload any)

// Bus holds listeners. The zero value is ready to use and a nil *Bus
// silently drops events.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Name][]Handler
}

func New() *Bus {
	return &Bus{handlers: map[Name][]Handler{}}
}

// Listen registers handler for name.
func (b *Bus) Listen(name Name, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = map[Name][]Handler{}
	}
	b.handlers[name] = append(b.handlers[name], handler)
}

// Fire dispatches synchronously to every listener of name.
func (b *Bus) Fire(ctx context.Context, name Name, payload any) {
	for _, h := range b.listeners(name) {
		h(ctx, payload)
	}
}

func (b *Bus) listeners(name Name) []Handler {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}
