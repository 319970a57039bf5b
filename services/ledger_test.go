package services

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// movementLog records audit rows so tests can check what would be persisted.
type movementLog struct {
	NopStore
	rows []*Movement
}

func (s *movementLog) SaveMovement(m *Movement) error {
	s.rows = append(s.rows, m)
	return nil
}

func TestAdjustCreatesAndRetiresLots(t *testing.T) {
	f := newFixture()

	lot, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 8, "initial count")
	require.NoError(t, err)
	assert.Equal(t, 8, lot.Quantity)
	assert.NotZero(t, lot.ID)
	assert.False(t, lot.Expiry.IsZero(), "expiry derives from DOT code and shelf life")

	lot2, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 3, "recount")
	require.NoError(t, err)
	assert.Equal(t, lot.ID, lot2.ID, "same key adjusts the same lot")
	assert.Equal(t, 11, lot2.Quantity)

	_, err = f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", -11, "drain")
	require.NoError(t, err)

	_, err = f.ledger.FindLot(LotKey{ItemCode: "TYRE-A", BatchNo: "B001", DotCode: "2201", WhsCode: "WH01", Location: "A2"})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf, "a drained lot is retired, not kept at zero")

	occ, err := f.capacity.Occupied("A2")
	require.NoError(t, err)
	assert.Equal(t, 0, occ)
}

func TestAdjustBelowZeroFails(t *testing.T) {
	f := newFixture()

	_, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 5, "seed")
	require.NoError(t, err)

	_, err = f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", -6, "too much")
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 6, ise.Requested)
	assert.Equal(t, 5, ise.Available)

	lot, err := f.ledger.FindLot(LotKey{ItemCode: "TYRE-A", BatchNo: "B001", DotCode: "2201", WhsCode: "WH01", Location: "A2"})
	require.NoError(t, err)
	assert.Equal(t, 5, lot.Quantity, "failed adjust leaves the lot untouched")
}

func TestAdjustRespectsCapacity(t *testing.T) {
	f := newFixture()

	// A1 holds at most 10
	_, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A1", 10, "fill")
	require.NoError(t, err)

	_, err = f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A1", 1, "one over")
	var ce *CapacityExceededError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "A1", ce.Location)
	assert.Equal(t, 0, ce.Free)

	occ, err := f.capacity.Occupied("A1")
	require.NoError(t, err)
	assert.Equal(t, 10, occ, "occupancy unchanged after the rejection")
}

func TestAdjustUnknownLocationFails(t *testing.T) {
	f := newFixture()

	_, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "NOWHERE", 5, "seed")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestAdjustBlockedLocationFails(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.capacity.SetBlocked("A2", true))

	_, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 5, "seed")
	var ce *CapacityExceededError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Blocked)

	// decreases are still allowed on a blocked location
	require.NoError(t, f.capacity.SetBlocked("A2", false))
	_, err = f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 5, "seed")
	require.NoError(t, err)
	require.NoError(t, f.capacity.SetBlocked("A2", true))

	_, err = f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", -2, "shrink")
	assert.NoError(t, err)
}

func TestAdjustRejectsBadInput(t *testing.T) {
	f := newFixture()

	_, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 0, "noop")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.ledger.AdjustLot(f.scope, "", "B001", "2201", "A2", 5, "no item")
	assert.ErrorAs(t, err, &ve)

	_, err = f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "9901", "A2", 5, "week 99")
	assert.ErrorAs(t, err, &ve)
}

func TestMoveLotSplitsAndMerges(t *testing.T) {
	f := newFixture()

	src, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 10, "seed")
	require.NoError(t, err)

	dest, err := f.ledger.MoveLot(f.scope, src.ID, "", "A1", 4)
	require.NoError(t, err)
	assert.Equal(t, "A1", dest.Location)
	assert.Equal(t, 4, dest.Quantity)
	assert.NotEqual(t, src.ID, dest.ID)

	remaining, err := f.ledger.LotByID(src.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining.Quantity)

	// moving the rest merges into the existing destination lot
	dest2, err := f.ledger.MoveLot(f.scope, src.ID, "", "A1", 6)
	require.NoError(t, err)
	assert.Equal(t, dest.ID, dest2.ID)
	assert.Equal(t, 10, dest2.Quantity)

	assert.Equal(t, 10, f.ledger.TotalOnHand("WH01", "TYRE-A"), "moves never change totals")
}

func TestMoveLotCapacityRejectionIsAtomic(t *testing.T) {
	f := newFixture()

	src, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 5, "seed")
	require.NoError(t, err)

	// B1 caps at 3
	_, err = f.ledger.MoveLot(f.scope, src.ID, "", "B1", 5)
	var ce *CapacityExceededError
	require.ErrorAs(t, err, &ce)

	after, err := f.ledger.LotByID(src.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, after.Quantity, "source untouched, no partial move")

	occ, err := f.capacity.Occupied("B1")
	require.NoError(t, err)
	assert.Equal(t, 0, occ)
}

func TestMoveLotStaleReference(t *testing.T) {
	f := newFixture()

	src, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 5, "seed")
	require.NoError(t, err)

	// drain the lot behind the caller's back
	_, err = f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", -5, "drain")
	require.NoError(t, err)

	_, err = f.ledger.MoveLot(f.scope, src.ID, "", "A1", 2)
	var cc *ConcurrencyConflictError
	assert.ErrorAs(t, err, &cc)
}

func TestMoveLotAcrossWarehouses(t *testing.T) {
	f := newFixture()
	store := &movementLog{}
	ledger := NewLedger(f.capacity, f.catalog, store, zerolog.Nop())

	src, err := ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 5, "seed")
	require.NoError(t, err)

	dest, err := ledger.MoveLot(f.scope, src.ID, "", "A1", 2)
	require.NoError(t, err)
	assert.Equal(t, "WH01", dest.WhsCode)

	dest, err = ledger.MoveLot(f.scope, src.ID, "WH02", "C1", 3)
	require.NoError(t, err)
	assert.Equal(t, "WH02", dest.WhsCode)

	assert.Equal(t, 2, ledger.TotalOnHand("WH01", "TYRE-A"))
	assert.Equal(t, 3, ledger.TotalOnHand("WH02", "TYRE-A"))

	// the audit trail names both warehouses on the cross-warehouse leg only
	require.Len(t, store.rows, 3)
	within := store.rows[1]
	assert.Equal(t, "WH01", within.WhsCode)
	assert.Empty(t, within.FromWhsCode)
	across := store.rows[2]
	assert.Equal(t, "WH02", across.WhsCode)
	assert.Equal(t, "WH01", across.FromWhsCode)
	assert.Equal(t, "A2", across.FromLocation)
	assert.Equal(t, "C1", across.ToLocation)
}

func TestQueryAvailableOrdersOldestFirst(t *testing.T) {
	f := newFixture()

	_, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "1024", "A2", 3, "seed")
	require.NoError(t, err)
	_, err = f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "0523", "A1", 2, "seed")
	require.NoError(t, err)
	_, err = f.ledger.AdjustLot(f.scope, "TYRE-A", "B002", "4822", "A2", 4, "seed")
	require.NoError(t, err)
	_, err = f.ledger.AdjustLot(f.scope, "TYRE-B", "B009", "0122", "A2", 9, "other product")
	require.NoError(t, err)

	views := f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{})
	require.Len(t, views, 3)
	assert.Equal(t, "4822", views[0].DotCode)
	assert.Equal(t, "0523", views[1].DotCode)
	assert.Equal(t, "1024", views[2].DotCode)

	byBatch := f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{BatchNo: "B002"})
	require.Len(t, byBatch, 1)
	assert.Equal(t, 4, byBatch[0].Quantity)

	byLoc := f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{Location: "A1"})
	require.Len(t, byLoc, 1)
	assert.Equal(t, "0523", byLoc[0].DotCode)
}

func TestConservationUnderConcurrentAdjusts(t *testing.T) {
	f := newFixture()

	_, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 100, "seed")
	require.NoError(t, err)

	// 20 workers each move one unit back and forth between A2 and a
	// private batch slot, then put it back
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", -1, "out"); err != nil {
					continue
				}
				for {
					if _, err := f.ledger.AdjustLot(f.scope, "TYRE-A", "B001", "2201", "A2", 1, "back"); err == nil {
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, f.ledger.TotalOnHand("WH01", "TYRE-A"))
	occ, err := f.capacity.Occupied("A2")
	require.NoError(t, err)
	assert.Equal(t, 100, occ)
}
