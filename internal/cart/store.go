package cart

import (
	"sync"

	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
)

// Line is one distinct product in the cart. UnitPriceHalalas is denominated
// in the canonical storage currency's minor unit.
type Line struct {
	ProductID        string
	Name             string
	NameAR           string
	UnitPriceHalalas int64
	ImageURL         string
	Quantity         int
}

// Snapshot is an immutable copy of the cart taken at a point in time. Order
// submission reads snapshots so later cart mutation never leaks into a
// submitted order.
type Snapshot struct {
	Lines []Line
}

// TotalItemCount sums the quantities across all lines.
func (s Snapshot) TotalItemCount() int {
	total := 0
	for _, line := range s.Lines {
		total += line.Quantity
	}
	return total
}

// SubtotalHalalas sums unit price times quantity across all lines.
func (s Snapshot) SubtotalHalalas() int64 {
	var total int64
	for _, line := range s.Lines {
		total += line.UnitPriceHalalas * int64(line.Quantity)
	}
	return total
}

// Observer is notified synchronously after every mutation, before the
// mutating call returns.
type Observer func(Snapshot)

// Store owns the canonical cart lines for one shopper session. At most one
// line exists per product id; adding an existing product increments its
// quantity. Insertion order is preserved for display.
type Store struct {
	mu        sync.Mutex
	lines     []Line
	observers []Observer
}

// NewStore builds an empty cart store.
func NewStore() *Store {
	return &Store{}
}

// Subscribe registers an observer for mutation notifications.
func (s *Store) Subscribe(obs Observer) {
	if obs == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

// AddItem merges the product into the cart, incrementing the quantity when a
// line for the product already exists. The existing line's price and display
// fields win on merge.
func (s *Store) AddItem(line Line, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity must be positive")
	}
	if line.ProductID == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidInput, "product id is required")
	}
	if line.UnitPriceHalalas < 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidInput, "unit price cannot be negative")
	}

	s.mu.Lock()
	if idx := s.indexOf(line.ProductID); idx >= 0 {
		s.lines[idx].Quantity += quantity
	} else {
		line.Quantity = quantity
		s.lines = append(s.lines, line)
	}
	s.notifyLocked()
	return nil
}

// RemoveItem deletes the matching line. Removing an absent product is a no-op.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	idx := s.indexOf(productID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	s.notifyLocked()
}

// SetQuantity overwrites the line's quantity. A quantity of zero or less
// behaves exactly as RemoveItem. Setting the quantity of an absent product is
// a lenient no-op: call sites treat the cart row as already gone rather than
// an error.
func (s *Store) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}
	s.mu.Lock()
	idx := s.indexOf(productID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.lines[idx].Quantity = quantity
	s.notifyLocked()
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.notifyLocked()
}

// TotalItemCount is a pure derived read of the summed quantities.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// SubtotalHalalas is a pure derived read of unit price times quantity.
func (s *Store) SubtotalHalalas() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, line := range s.lines {
		total += line.UnitPriceHalalas * int64(line.Quantity)
	}
	return total
}

// Snapshot returns an immutable copy of the current lines.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{Lines: lines}
}

// notifyLocked snapshots under the lock, releases it, then notifies so
// observers observe a consistent cart and may re-enter the store.
func (s *Store) notifyLocked() {
	snapshot := s.snapshotLocked()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()
	for _, obs := range observers {
		obs(snapshot)
	}
}

func (s *Store) indexOf(productID string) int {
	for i, line := range s.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}
