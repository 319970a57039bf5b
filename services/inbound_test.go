package services

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiveAndPutawayFlow(t *testing.T) {
	f := newFixture()

	r, err := f.inbound.CreateReceipt(f.scope, CreateReceiptRequest{
		SupplierCode: "SUP01",
		Containers: []CreateReceiptContainer{{
			ContainerNo: "CONT-1",
			Items:       []CreateReceiptItem{{ItemCode: "TYRE-A", ExpectedQty: 10, UnitCost: decimal.NewFromInt(250)}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, ReceiptPending, r.Status)
	assert.True(t, strings.HasPrefix(r.ReceiptNo, "RC"))

	itemID := r.Containers[0].Items[0].ID

	// first receive: 6 of 10, stock lands at the dock with stickers
	r, err = f.inbound.ReceiveItem(f.scope, r.ID, itemID, 6, "B001", "2201", decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.Equal(t, ReceiptPartiallyReceived, r.Status)

	line := r.Containers[0].Items[0].Lines[0]
	assert.Len(t, line.Stickers, 6)
	assert.Equal(t, 6, f.ledger.TotalOnHand("WH01", "TYRE-A"))

	dock := f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{Location: "DOCK"})
	require.Len(t, dock, 1)
	assert.Equal(t, 6, dock[0].Quantity)

	// second receive with a different batch completes the receive phase
	r, err = f.inbound.ReceiveItem(f.scope, r.ID, itemID, 4, "B002", "3501", decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.Equal(t, ReceiptReceived, r.Status)

	// put the first line away in two steps
	r, err = f.inbound.PutawayItem(f.scope, r.ID, line.ID, 4, "A2")
	require.NoError(t, err)
	assert.Equal(t, ReceiptPartiallyPutaway, r.Status)

	r, err = f.inbound.PutawayItem(f.scope, r.ID, line.ID, 0, "A2")
	require.NoError(t, err)
	line = r.Containers[0].Items[0].Lines[0]
	assert.Equal(t, 6, line.PutawayQty)

	// second line, whole quantity in one go, to a different bin
	line2 := r.Containers[0].Items[0].Lines[1]
	r, err = f.inbound.PutawayItem(f.scope, r.ID, line2.ID, 0, "A1")
	require.NoError(t, err)
	assert.Equal(t, ReceiptCompleted, r.Status)

	assert.Equal(t, 10, f.ledger.TotalOnHand("WH01", "TYRE-A"))
	assert.Empty(t, f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{Location: "DOCK"}))
}

func TestReceiveBeyondExpectedFails(t *testing.T) {
	f := newFixture()

	r := f.receive(t, "TYRE-A", 5)
	itemID := r.Containers[0].Items[0].ID

	_, err := f.inbound.ReceiveItem(f.scope, r.ID, itemID, 1, "B001", "2201", decimal.Zero)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 5, f.ledger.TotalOnHand("WH01", "TYRE-A"))
}

func TestReceiveUnknownProductFails(t *testing.T) {
	f := newFixture()

	_, err := f.inbound.CreateReceipt(f.scope, CreateReceiptRequest{
		SupplierCode: "SUP01",
		Containers: []CreateReceiptContainer{{
			ContainerNo: "CONT-1",
			Items:       []CreateReceiptItem{{ItemCode: "NO-SUCH", ExpectedQty: 5}},
		}},
	})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestPutawayBeyondLineFails(t *testing.T) {
	f := newFixture()

	r := f.receive(t, "TYRE-A", 5)
	line := r.Containers[0].Items[0].Lines[0]

	_, err := f.inbound.PutawayItem(f.scope, r.ID, line.ID, 6, "A2")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	dock := f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{Location: "DOCK"})
	require.Len(t, dock, 1)
	assert.Equal(t, 5, dock[0].Quantity)
}

func TestPutawayCapacityRejection(t *testing.T) {
	f := newFixture()

	r := f.receive(t, "TYRE-A", 5)
	line := r.Containers[0].Items[0].Lines[0]

	// B1 caps at 3
	_, err := f.inbound.PutawayItem(f.scope, r.ID, line.ID, 5, "B1")
	var ce *CapacityExceededError
	require.ErrorAs(t, err, &ce)

	dock := f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{Location: "DOCK"})
	require.Len(t, dock, 1)
	assert.Equal(t, 5, dock[0].Quantity, "rejected putaway leaves the dock untouched")
}

func TestCancelReceiptIsNetZero(t *testing.T) {
	f := newFixture()

	before := f.ledger.TotalOnHand("WH01", "TYRE-A")

	r := f.receive(t, "TYRE-A", 8)
	line := r.Containers[0].Items[0].Lines[0]
	_, err := f.inbound.PutawayItem(f.scope, r.ID, line.ID, 5, "A2")
	require.NoError(t, err)

	r, err = f.inbound.CancelReceipt(f.scope, r.ID)
	require.NoError(t, err)
	assert.Equal(t, ReceiptCancelled, r.Status)

	assert.Equal(t, before, f.ledger.TotalOnHand("WH01", "TYRE-A"), "cancel reverses dock and putaway stock alike")
	occ, err := f.capacity.Occupied("A2")
	require.NoError(t, err)
	assert.Equal(t, 0, occ)

	// the issued stickers are void now
	st, err := f.stickers.Resolve(line.Stickers[0])
	require.NoError(t, err)
	assert.Equal(t, StickerVoid, st.Status)

	// a cancelled receipt takes no further mutations
	_, err = f.inbound.ReceiveItem(f.scope, r.ID, r.Containers[0].Items[0].ID, 1, "B001", "2201", decimal.Zero)
	var ist *InvalidStateTransitionError
	assert.ErrorAs(t, err, &ist)
}

func TestFailedCancelLeavesStickersAlive(t *testing.T) {
	f := newFixture()

	r, err := f.inbound.CreateReceipt(f.scope, CreateReceiptRequest{
		SupplierCode: "SUP01",
		Containers: []CreateReceiptContainer{{
			ContainerNo: "CONT-1",
			Items:       []CreateReceiptItem{{ItemCode: "TYRE-A", ExpectedQty: 8, UnitCost: decimal.NewFromInt(100)}},
		}},
	})
	require.NoError(t, err)
	itemID := r.Containers[0].Items[0].ID

	r, err = f.inbound.ReceiveItem(f.scope, r.ID, itemID, 5, "B001", "2201", decimal.NewFromInt(100))
	require.NoError(t, err)
	r, err = f.inbound.ReceiveItem(f.scope, r.ID, itemID, 3, "B002", "3501", decimal.NewFromInt(100))
	require.NoError(t, err)

	line1 := r.Containers[0].Items[0].Lines[0]
	line2 := r.Containers[0].Items[0].Lines[1]
	_, err = f.inbound.PutawayItem(f.scope, r.ID, line1.ID, 5, "A2")
	require.NoError(t, err)
	r, err = f.inbound.PutawayItem(f.scope, r.ID, line2.ID, 2, "A1")
	require.NoError(t, err)
	assert.Equal(t, ReceiptPartiallyPutaway, r.Status)

	// picking from the second line's bin makes its reversal come up short
	lot, err := f.ledger.FindLot(LotKey{ItemCode: "TYRE-A", BatchNo: "B002", DotCode: "3501", WhsCode: "WH01", Location: "A1"})
	require.NoError(t, err)
	f.pickedOrder(t, "TYRE-A", 2, lot.ID)
	onHand := f.ledger.TotalOnHand("WH01", "TYRE-A")

	_, err = f.inbound.CancelReceipt(f.scope, r.ID)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)

	// the first line was already reversed and rolled back; its stickers
	// must not have been voided along the way
	assert.Equal(t, onHand, f.ledger.TotalOnHand("WH01", "TYRE-A"))
	for _, code := range line1.Stickers {
		st, err := f.stickers.Resolve(code)
		require.NoError(t, err)
		assert.Equal(t, StickerActive, st.Status)
	}
	assert.Equal(t, ReceiptPartiallyPutaway, r.Status)
}

func TestReceiptScopedToWarehouse(t *testing.T) {
	f := newFixture()

	r := f.receive(t, "TYRE-A", 5)

	other := Scope{WhsCode: "WH02", UserID: 9}
	_, err := f.inbound.GetReceipt(other, r.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Empty(t, f.inbound.ListReceipts(other))
	assert.Len(t, f.inbound.ListReceipts(f.scope), 1)
}
