package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferMovesStockBetweenBins(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 5, "A2")

	tr, err := f.transfer.CreateTransfer(f.scope, CreateTransferRequest{
		Lines: []CreateTransferLine{{LotID: lot.ID, Quantity: 5, ToLocation: "A1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, TransferPending, tr.Status)
	assert.True(t, strings.HasPrefix(tr.TransferNo, "TR"))

	tr, err = f.transfer.ExecuteTransfer(f.scope, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, TransferCompleted, tr.Status)
	assert.Equal(t, "A2", tr.Lines[0].FromLocation)

	dest, err := f.ledger.LotByID(tr.Lines[0].DestLotID)
	require.NoError(t, err)
	assert.Equal(t, "A1", dest.Location)
	assert.Equal(t, 5, dest.Quantity)
	assert.Equal(t, 5, f.ledger.TotalOnHand("WH01", "TYRE-A"))

	// stickers followed the stock, so the moved units stay pickable
	o := f.pickedOrder(t, "TYRE-A", 5, dest.ID)
	assert.Equal(t, OrderPicked, o.Status)
}

func TestTransferAcrossWarehouses(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 4, "A2")

	tr, err := f.transfer.CreateTransfer(f.scope, CreateTransferRequest{
		ToWhsCode: "WH02",
		Lines:     []CreateTransferLine{{LotID: lot.ID, Quantity: 4, ToLocation: "C1"}},
	})
	require.NoError(t, err)

	_, err = f.transfer.ExecuteTransfer(f.scope, tr.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, f.ledger.TotalOnHand("WH01", "TYRE-A"))
	assert.Equal(t, 4, f.ledger.TotalOnHand("WH02", "TYRE-A"))
}

func TestTransferCapacityFailureRollsBackWholeDocument(t *testing.T) {
	f := newFixture()
	lotA := f.seedStock(t, "TYRE-A", 5, "A2")
	lotB := f.seedStock(t, "TYRE-B", 5, "A1")

	// line 1 fits, line 2 wants 5 into B1 which caps at 3
	tr, err := f.transfer.CreateTransfer(f.scope, CreateTransferRequest{
		Lines: []CreateTransferLine{
			{LotID: lotA.ID, Quantity: 5, ToLocation: "A1"},
			{LotID: lotB.ID, Quantity: 5, ToLocation: "B1"},
		},
	})
	require.NoError(t, err)

	_, err = f.transfer.ExecuteTransfer(f.scope, tr.ID)
	var ce *CapacityExceededError
	require.ErrorAs(t, err, &ce)

	tr, err = f.transfer.GetTransfer(f.scope, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, TransferPending, tr.Status, "failed execution leaves the transfer pending")

	// line 1's stock is back where it started
	a2 := f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{Location: "A2"})
	require.Len(t, a2, 1)
	assert.Equal(t, 5, a2[0].Quantity)

	b, err := f.ledger.LotByID(lotB.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, b.Quantity)

	occ, err := f.capacity.Occupied("B1")
	require.NoError(t, err)
	assert.Equal(t, 0, occ)
}

func TestTransferInsufficientStock(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 3, "A2")

	tr, err := f.transfer.CreateTransfer(f.scope, CreateTransferRequest{
		Lines: []CreateTransferLine{{LotID: lot.ID, Quantity: 4, ToLocation: "A1"}},
	})
	require.NoError(t, err)

	_, err = f.transfer.ExecuteTransfer(f.scope, tr.ID)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 3, f.ledger.TotalOnHand("WH01", "TYRE-A"))
}

func TestCancelTransfer(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 3, "A2")

	tr, err := f.transfer.CreateTransfer(f.scope, CreateTransferRequest{
		Lines: []CreateTransferLine{{LotID: lot.ID, Quantity: 3, ToLocation: "A1"}},
	})
	require.NoError(t, err)

	tr, err = f.transfer.CancelTransfer(f.scope, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, TransferCancelled, tr.Status)

	_, err = f.transfer.ExecuteTransfer(f.scope, tr.ID)
	var ist *InvalidStateTransitionError
	assert.ErrorAs(t, err, &ist)

	// nothing moved
	after, err := f.ledger.LotByID(lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Quantity)
	assert.Equal(t, "A2", after.Location)
}

func TestTransferUnknownLotFails(t *testing.T) {
	f := newFixture()

	_, err := f.transfer.CreateTransfer(f.scope, CreateTransferRequest{
		Lines: []CreateTransferLine{{LotID: 424242, Quantity: 1, ToLocation: "A1"}},
	})
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}
