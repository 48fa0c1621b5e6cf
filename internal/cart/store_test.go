package cart

import (
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/tbostore/storefront-backend/pkg/errors"
)

func line(id string, price int64) Line {
	return Line{ProductID: id, Name: "product " + id, UnitPriceHalalas: price}
}

func TestAddItem_MergesSameProduct(t *testing.T) {
	s := NewStore()

	if err := s.AddItem(line("7", 49), 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := s.AddItem(line("7", 49), 1); err != nil {
		t.Fatalf("second add: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Lines) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(snap.Lines))
	}
	if snap.Lines[0].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %d", snap.Lines[0].Quantity)
	}
	if got := s.SubtotalHalalas(); got != 98 {
		t.Fatalf("expected subtotal 98, got %d", got)
	}
	if got := s.TotalItemCount(); got != 2 {
		t.Fatalf("expected item count 2, got %d", got)
	}
}

func TestAddItem_MergeKeepsExistingPrice(t *testing.T) {
	s := NewStore()

	if err := s.AddItem(line("p1", 100), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddItem(line("p1", 999), 2); err != nil {
		t.Fatalf("add again: %v", err)
	}

	snap := s.Snapshot()
	if snap.Lines[0].UnitPriceHalalas != 100 {
		t.Fatalf("expected existing line price to win, got %d", snap.Lines[0].UnitPriceHalalas)
	}
	if snap.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", snap.Lines[0].Quantity)
	}
}

func TestAddItem_RejectsInvalidInput(t *testing.T) {
	s := NewStore()

	cases := []struct {
		name string
		line Line
		qty  int
	}{
		{name: "zero quantity", line: line("p1", 100), qty: 0},
		{name: "negative quantity", line: line("p1", 100), qty: -3},
		{name: "missing product id", line: line("", 100), qty: 1},
		{name: "negative price", line: line("p1", -1), qty: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.AddItem(tc.line, tc.qty)
			if err == nil {
				t.Fatal("expected an error")
			}
			if pkgerrors.CodeOf(err) != pkgerrors.CodeInvalidInput {
				t.Fatalf("expected INVALID_INPUT, got %s", pkgerrors.CodeOf(err))
			}
		})
	}
	if s.TotalItemCount() != 0 {
		t.Fatal("rejected adds must not mutate the cart")
	}
}

func TestRemoveItem_ThenAddStartsFreshLine(t *testing.T) {
	s := NewStore()

	if err := s.AddItem(line("p1", 50), 4); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.RemoveItem("p1")
	if err := s.AddItem(line("p1", 50), 1); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Lines) != 1 || snap.Lines[0].Quantity != 1 {
		t.Fatalf("expected a fresh line with quantity 1, got %+v", snap.Lines)
	}
}

func TestRemoveItem_AbsentProductIsNoOp(t *testing.T) {
	s := NewStore()
	if err := s.AddItem(line("p1", 50), 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	s.RemoveItem("does-not-exist")

	if s.TotalItemCount() != 1 {
		t.Fatal("removing an absent product must not change the cart")
	}
}

func TestSetQuantity_Overwrites(t *testing.T) {
	s := NewStore()
	if err := s.AddItem(line("p1", 25), 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	s.SetQuantity("p1", 5)

	if got := s.TotalItemCount(); got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
	if got := s.SubtotalHalalas(); got != 125 {
		t.Fatalf("expected subtotal 125, got %d", got)
	}
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	s := NewStore()
	if err := s.AddItem(line("p1", 25), 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	s.SetQuantity("p1", 0)

	if len(s.Snapshot().Lines) != 0 {
		t.Fatal("quantity zero must remove the line")
	}
}

func TestSetQuantity_AbsentProductIsNoOp(t *testing.T) {
	s := NewStore()
	if err := s.AddItem(line("p1", 25), 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	s.SetQuantity("ghost", 9)

	snap := s.Snapshot()
	if len(snap.Lines) != 1 || snap.Lines[0].ProductID != "p1" || snap.Lines[0].Quantity != 2 {
		t.Fatalf("setting quantity for an absent product must not change the cart, got %+v", snap.Lines)
	}
}

func TestClear_EmptiesCart(t *testing.T) {
	s := NewStore()
	if err := s.AddItem(line("p1", 25), 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddItem(line("p2", 75), 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	s.Clear()

	if s.TotalItemCount() != 0 || s.SubtotalHalalas() != 0 {
		t.Fatal("clear must empty the cart")
	}
}

func TestObservers_NotifiedSynchronouslyOnEveryMutation(t *testing.T) {
	s := NewStore()
	var seen []int
	s.Subscribe(func(snap Snapshot) {
		seen = append(seen, snap.TotalItemCount())
	})

	if err := s.AddItem(line("p1", 10), 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.SetQuantity("p1", 3)
	s.RemoveItem("p1")

	want := []int{2, 3, 0}
	if len(seen) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notification %d: expected count %d, got %d", i, want[i], seen[i])
		}
	}
}

func TestObserver_MayReenterStore(t *testing.T) {
	s := NewStore()
	s.Subscribe(func(snap Snapshot) {
		// Reads back into the store while a mutation notification is in
		// flight must not deadlock.
		_ = s.TotalItemCount()
	})

	if err := s.AddItem(line("p1", 10), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestSnapshot_IsolatedFromLaterMutation(t *testing.T) {
	s := NewStore()
	if err := s.AddItem(line("p1", 40), 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	snap := s.Snapshot()
	s.Clear()

	if snap.TotalItemCount() != 2 || snap.SubtotalHalalas() != 80 {
		t.Fatal("snapshot must not observe mutations taken after it")
	}
}

func TestStore_ConcurrentMutation(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.AddItem(line("p1", 10), 1); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := s.TotalItemCount(); got != 50 {
		t.Fatalf("expected 50 items after concurrent adds, got %d", got)
	}
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := NewManager()

	a := m.GetOrCreate("session-a")
	b := m.GetOrCreate("session-b")
	if err := a.AddItem(line("p1", 100), 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	if b.TotalItemCount() != 0 {
		t.Fatal("sessions must not share cart state")
	}
	if got := m.GetOrCreate("session-a"); got != a {
		t.Fatal("expected the same store for the same session")
	}
}

func TestManager_PruneIdle(t *testing.T) {
	m := NewManager()
	current := time.Now()
	m.now = func() time.Time { return current }

	m.GetOrCreate("stale")
	current = current.Add(2 * time.Hour)
	m.GetOrCreate("fresh")

	if pruned := m.PruneIdle(time.Hour); pruned != 1 {
		t.Fatalf("expected 1 pruned session, got %d", pruned)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", m.Len())
	}
}
