package service

import (
	"sort"
	"sync"

	"order_bot/internal/domain"
)

// OrderService owns the authoritative in-process order state: one map
// of orders and one of item collections, both keyed by order id, plus
// a per-order lock table. Every read-then-write operation for a given
// id runs under that order's mutex; operations on different ids
// proceed fully concurrently. A single global lock would serialize
// unrelated orders, so there isn't one.
//
// State is a write-through cache over the event-carried snapshot: when
// an id is referenced but not resident, the snapshot supplied with the
// event rebuilds both maps before the operation runs.
type OrderService struct {
	mu     sync.Mutex // guards the three maps, never held across an operation
	orders map[domain.OrderID]*domain.Order
	items  map[domain.OrderID]domain.Items
	locks  map[domain.OrderID]*sync.Mutex
}

// NewOrderService creates an empty service.
func NewOrderService() *OrderService {
	return &OrderService{
		orders: make(map[domain.OrderID]*domain.Order),
		items:  make(map[domain.OrderID]domain.Items),
		locks:  make(map[domain.OrderID]*sync.Mutex),
	}
}

// lockOrder acquires the exclusion domain for one order id.
// Lock entries are kept for the process lifetime: deleting them on
// evict would let a waiter holding the old mutex race a rehydration
// that created a fresh one.
func (s *OrderService) lockOrder(id domain.OrderID) *sync.Mutex {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l
}

// getOrHydrate returns the resident order and items for id, rebuilding
// both from snap when absent. Must be called with the order's lock
// held. A missing order with no snapshot is corruption, not a
// retryable miss: every event that can reference an id carries one.
func (s *OrderService) getOrHydrate(id domain.OrderID, snap *domain.Snapshot) (*domain.Order, domain.Items, error) {
	s.mu.Lock()
	order, ok := s.orders[id]
	items := s.items[id]
	s.mu.Unlock()
	if ok {
		return order, items, nil
	}
	if snap == nil {
		return nil, nil, &domain.NotFoundError{OrderID: id}
	}
	order, items = snap.Restore(id)
	s.mu.Lock()
	s.orders[id] = order
	s.items[id] = items
	s.mu.Unlock()
	return order, items, nil
}

func (s *OrderService) evict(id domain.OrderID) {
	s.mu.Lock()
	delete(s.orders, id)
	delete(s.items, id)
	s.mu.Unlock()
}

// CreateOrder inserts a new open order with an empty item collection.
func (s *OrderService) CreateOrder(id domain.OrderID, name, creator, info, imageURL string) (*OrderView, error) {
	l := s.lockOrder(id)
	defer l.Unlock()

	s.mu.Lock()
	_, exists := s.orders[id]
	s.mu.Unlock()
	if exists {
		return nil, &domain.ConflictError{OrderID: id}
	}

	order := &domain.Order{
		ID:       id,
		Name:     name,
		Creator:  creator,
		Info:     info,
		ImageURL: imageURL,
		State:    domain.OrderStateOpen,
	}
	items := make(domain.Items)
	s.mu.Lock()
	s.orders[id] = order
	s.items[id] = items
	s.mu.Unlock()

	return projectView(order, items), nil
}

// GetOrderView returns the projection the renderer needs, hydrating
// from snap if the order is not resident.
func (s *OrderService) GetOrderView(id domain.OrderID, snap *domain.Snapshot) (*OrderView, error) {
	l := s.lockOrder(id)
	defer l.Unlock()

	order, items, err := s.getOrHydrate(id, snap)
	if err != nil {
		return nil, err
	}
	return projectView(order, items), nil
}

// UpsertItemQuantities applies one batch of participant quantity edits
// to a single item. Edits either all apply or none do. The returned
// view reflects the committed state, with Removed set when the batch
// drove the item's amount to zero.
func (s *OrderService) UpsertItemQuantities(id domain.OrderID, snap *domain.Snapshot, actor, itemName string, price int64, edits map[domain.Participant]int64) (*UpsertResult, error) {
	l := s.lockOrder(id)
	defer l.Unlock()

	order, items, err := s.getOrHydrate(id, snap)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeMutation(order, actor, "add item"); err != nil {
		return nil, err
	}
	_, removed, err := items.Upsert(itemName, price, edits)
	if err != nil {
		return nil, err
	}
	return &UpsertResult{
		View:     projectView(order, items),
		ItemName: itemName,
		Removed:  removed,
	}, nil
}

// SetItemPrice overwrites the price of an existing item. Gated the
// same way as quantity edits: open order, or the creator at any time.
func (s *OrderService) SetItemPrice(id domain.OrderID, snap *domain.Snapshot, actor, itemName string, price int64) (*OrderView, error) {
	l := s.lockOrder(id)
	defer l.Unlock()

	order, items, err := s.getOrHydrate(id, snap)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeMutation(order, actor, "set item price"); err != nil {
		return nil, err
	}
	if err := items.SetPrice(itemName, price); err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.NotFoundError{OrderID: id, Item: itemName}
		}
		return nil, err
	}
	return projectView(order, items), nil
}

// OrderEdit carries the creator-gated order info changes. State is
// freely settable here, including back to Open; flipping it to Closed
// through this path performs no settlement and no eviction. Only
// CloseOrder settles.
type OrderEdit struct {
	Name       string
	Info       string
	ImageURL   string
	State      domain.OrderState
	NewCreator string
}

// EditOrderInfo rewrites the order's descriptive fields and, when
// NewCreator differs from the current creator, hands the order over.
func (s *OrderService) EditOrderInfo(id domain.OrderID, snap *domain.Snapshot, actor string, edit OrderEdit) (*EditResult, error) {
	l := s.lockOrder(id)
	defer l.Unlock()

	order, items, err := s.getOrHydrate(id, snap)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeAdmin(order, actor, "edit order info"); err != nil {
		return nil, err
	}

	creatorChanged := edit.NewCreator != "" && edit.NewCreator != order.Creator
	previousCreator := order.Creator

	order.Name = edit.Name
	order.Info = edit.Info
	order.ImageURL = edit.ImageURL
	if edit.State != "" {
		order.State = edit.State
	}
	if edit.NewCreator != "" {
		order.Creator = edit.NewCreator
	}

	return &EditResult{
		View:            projectView(order, items),
		CreatorChanged:  creatorChanged,
		PreviousCreator: previousCreator,
	}, nil
}

// CloseOrder settles the order and evicts it from the resident maps.
// Only the creator may close, and an order with no items is rejected
// rather than silently settled empty. The final snapshot in the result
// is the last durable record of the closed order; any failure in the
// gateway's follow-up posting or unpinning must not roll the
// settlement back.
func (s *OrderService) CloseOrder(id domain.OrderID, snap *domain.Snapshot, actor string) (*CloseResult, error) {
	l := s.lockOrder(id)
	defer l.Unlock()

	order, items, err := s.getOrHydrate(id, snap)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeAdmin(order, actor, "close order"); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	entries := domain.Settle(items)
	order.State = domain.OrderStateClosed
	final := domain.CaptureSnapshot(order, items)
	view := projectView(order, items)
	s.evict(id)

	return &CloseResult{
		View:       view,
		Entries:    entries,
		Snapshot:   final,
		TotalPrice: view.TotalPrice,
	}, nil
}

// Resident reports whether an order id is currently in the cache.
// Used by tests and the dispatcher's post-close assertions.
func (s *OrderService) Resident(id domain.OrderID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.orders[id]
	return ok
}

// projectView builds the renderer-facing projection under the order's
// lock, so the snapshot and totals are consistent with each other.
func projectView(order *domain.Order, items domain.Items) *OrderView {
	view := &OrderView{
		Order:       *order,
		TotalPrice:  items.TotalPrice(),
		TotalAmount: items.TotalAmount(),
		Snapshot:    domain.CaptureSnapshot(order, items),
	}
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		it := items[name]
		iv := ItemView{Name: name, Price: it.Price, Amount: it.Amount}
		for _, p := range it.Roster() {
			iv.Shares = append(iv.Shares, ParticipantShare{
				Participant: p,
				Quantity:    it.Quantities[p],
			})
		}
		view.Items = append(view.Items, iv)
	}
	return view
}
