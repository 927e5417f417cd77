// Package ordertest provides an in-memory order.Repository with the same
// transactional guarantees the workflow relies on from Postgres: conditioned
// stock decrements are atomic, order rows lock until the unit of work ends and
// a failed unit of work leaves no trace.
package ordertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albaqer/gemstone-ecom/internal/order"
)

type Store struct {
	mu       sync.Mutex
	products map[string]*order.StockLevel
	orders   map[string]*order.Order
	items    map[string][]order.Item
	seq      map[string]int
	next     int
	rowLocks map[string]*sync.Mutex

	// BeforeDecrement, when set, runs right before each conditioned decrement
	// with no store lock held. Tests use it to interleave concurrent orders.
	BeforeDecrement func(productID string)
	// BeforeRestore runs right before each stock restore, also unlocked.
	BeforeRestore func(productID string)
}

func New() *Store {
	return &Store{
		products: map[string]*order.StockLevel{},
		orders:   map[string]*order.Order{},
		items:    map[string][]order.Item{},
		seq:      map[string]int{},
		rowLocks: map[string]*sync.Mutex{},
	}
}

func (s *Store) AddProduct(id, name string, price decimal.Decimal, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &order.StockLevel{ProductID: id, Name: name, Price: price, Quantity: qty}
}

func (s *Store) SetStock(id string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.Quantity = qty
	}
}

// Stock returns -1 for unknown products.
func (s *Store) Stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.Quantity
	}
	return -1
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, its := range s.items {
		n += len(its)
	}
	return n
}

// Put stores an order as-is, bypassing the workflow. Handy for fixtures in a given state.
func (s *Store) Put(o order.Order, items ...order.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
		o.UpdatedAt = o.CreatedAt
	}
	s.orders[o.ID] = &o
	s.items[o.ID] = append([]order.Item(nil), items...)
	s.next++
	s.seq[o.ID] = s.next
	if _, ok := s.rowLocks[o.ID]; !ok {
		s.rowLocks[o.ID] = &sync.Mutex{}
	}
}

func (s *Store) GetByID(_ context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *Store) GetItems(_ context.Context, orderID string) ([]order.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.Item(nil), s.items[orderID]...), nil
}

var deliveryRank = map[order.Status]int{
	order.StatusAssigned:  1,
	order.StatusInTransit: 2,
	order.StatusDelivered: 3,
}

func rank(st order.Status) int {
	if r, ok := deliveryRank[st]; ok {
		return r
	}
	return 4
}

func (s *Store) List(_ context.Context, f order.ListFilter) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []order.Order{}
	for _, o := range s.orders {
		switch {
		case f.UserID != "" && o.UserID != f.UserID:
			continue
		case f.DeliveryManID != "" && (o.DeliveryManID == nil || *o.DeliveryManID != f.DeliveryManID):
			continue
		case f.Status != "" && o.Status != f.Status:
			continue
		case f.OnlyUnassigned && o.DeliveryManID != nil:
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.DeliveryPriorities {
			if ri, rj := rank(out[i].Status), rank(out[j].Status); ri != rj {
				return ri < rj
			}
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})

	limit, offset := f.Limit, f.Offset
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []order.Order{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) WithTx(_ context.Context, fn func(tx order.Tx) error) error {
	t := &tx{s: s}
	defer t.release()
	if err := fn(t); err != nil {
		t.rollback()
		return err
	}
	return nil
}

// tx applies writes immediately and keeps an undo log for rollback.
type tx struct {
	s    *Store
	undo []func()
	held []*sync.Mutex
}

func (t *tx) rollback() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *tx) release() {
	for _, l := range t.held {
		l.Unlock()
	}
	t.held = nil
}

func (t *tx) StockLevel(_ context.Context, productID string) (order.StockLevel, bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, ok := t.s.products[productID]
	if !ok {
		return order.StockLevel{}, false, nil
	}
	return *p, true, nil
}

func (t *tx) InsertOrder(_ context.Context, o *order.Order) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, ex := range t.s.orders {
		if ex.OrderNumber == o.OrderNumber {
			return order.ErrDuplicateNumber
		}
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	cp := *o
	t.s.orders[o.ID] = &cp
	t.s.next++
	t.s.seq[o.ID] = t.s.next
	t.s.rowLocks[o.ID] = &sync.Mutex{}
	id := o.ID
	t.undo = append(t.undo, func() {
		delete(t.s.orders, id)
		delete(t.s.items, id)
		delete(t.s.seq, id)
	})
	return nil
}

func (t *tx) InsertItem(_ context.Context, it *order.Item) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.items[it.OrderID] = append(t.s.items[it.OrderID], *it)
	orderID, itemID := it.OrderID, it.ID
	t.undo = append(t.undo, func() {
		its := t.s.items[orderID]
		for i := range its {
			if its[i].ID == itemID {
				t.s.items[orderID] = append(its[:i:i], its[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (t *tx) DecrementStock(_ context.Context, productID string, qty int) (bool, error) {
	if hook := t.s.BeforeDecrement; hook != nil {
		hook(productID)
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, ok := t.s.products[productID]
	if !ok || p.Quantity < qty {
		return false, nil
	}
	p.Quantity -= qty
	t.undo = append(t.undo, func() { p.Quantity += qty })
	return true, nil
}

func (t *tx) RestoreStock(_ context.Context, productID string, qty int) error {
	if hook := t.s.BeforeRestore; hook != nil {
		hook(productID)
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, ok := t.s.products[productID]
	if !ok {
		return nil
	}
	p.Quantity += qty
	t.undo = append(t.undo, func() { p.Quantity -= qty })
	return nil
}

func (t *tx) LockOrder(_ context.Context, id string) (*order.Order, error) {
	t.s.mu.Lock()
	l, ok := t.s.rowLocks[id]
	t.s.mu.Unlock()
	if !ok {
		return nil, order.ErrNotFound
	}
	l.Lock()
	t.held = append(t.held, l)

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	o, ok := t.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (t *tx) Items(_ context.Context, orderID string) ([]order.Item, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return append([]order.Item(nil), t.s.items[orderID]...), nil
}

func (t *tx) update(id string, mutate func(o *order.Order)) (*order.Order, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	o, ok := t.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	prev := *o
	mutate(o)
	o.UpdatedAt = time.Now()
	t.undo = append(t.undo, func() { *o = prev })
	cp := *o
	return &cp, nil
}

func (t *tx) SetStatus(_ context.Context, id string, st order.Status, tracking *string) (*order.Order, error) {
	return t.update(id, func(o *order.Order) {
		o.Status = st
		if tracking != nil {
			tn := *tracking
			o.TrackingNumber = &tn
		}
	})
}

func (t *tx) SetDelivery(_ context.Context, id string, deliveryManID *string, assignedAt *time.Time, st order.Status) (*order.Order, error) {
	return t.update(id, func(o *order.Order) {
		o.DeliveryManID, o.AssignedAt, o.Status = deliveryManID, assignedAt, st
	})
}

func (t *tx) DeleteOrder(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	o, ok := t.s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	items, seq := t.s.items[id], t.s.seq[id]
	delete(t.s.orders, id)
	delete(t.s.items, id)
	delete(t.s.seq, id)
	t.undo = append(t.undo, func() {
		t.s.orders[id] = o
		t.s.items[id] = items
		t.s.seq[id] = seq
	})
	return nil
}

var _ order.Repository = (*Store)(nil)
