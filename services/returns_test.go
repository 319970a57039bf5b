package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) openReturn(t *testing.T, o *Order, item string, qty int) *Return {
	t.Helper()

	r, err := f.returns.CreateReturn(f.scope, CreateReturnRequest{
		OrderID: o.ID,
		Items:   []CreateReturnItem{{ItemCode: item, Quantity: qty}},
	})
	require.NoError(t, err)
	return r
}

func TestDamagedReturnAddsNothingToStock(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 5, "A2")
	o := f.deliveredOrder(t, f.pickedOrder(t, "TYRE-A", 3, lot.ID))

	before := f.ledger.TotalOnHand("WH01", "TYRE-A")

	r := f.openReturn(t, o, "TYRE-A", 3)
	assert.True(t, strings.HasPrefix(r.ReturnNo, "RT"))

	for _, code := range o.Items[0].Allocations[0].Stickers {
		r, _ = f.returns.InspectUnit(f.scope, r.ID, code, "damaged", "", "sidewall torn")
	}
	assert.Equal(t, 3, r.Items[0].ProcessedQty)
	assert.Equal(t, 0, r.Items[0].RestockedQty)
	assert.Equal(t, before, f.ledger.TotalOnHand("WH01", "TYRE-A"), "damaged units never re-enter stock")

	r, err := f.returns.CompleteReturn(f.scope, r.ID)
	require.NoError(t, err)
	assert.Equal(t, ReturnCompleted, r.Status)

	o, err = f.outbound.GetOrder(f.scope, o.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderReturned, o.Status)
}

func TestSellableReturnRestocksWithFreshSticker(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 5, "A2")
	o := f.deliveredOrder(t, f.pickedOrder(t, "TYRE-A", 2, lot.ID))

	r := f.openReturn(t, o, "TYRE-A", 2)

	code := o.Items[0].Allocations[0].Stickers[0]
	r, err := f.returns.InspectUnit(f.scope, r.ID, code, "sellable", "A1", "")
	require.NoError(t, err)

	insp := r.Inspections[0]
	assert.True(t, insp.Restocked)
	assert.NotEmpty(t, insp.NewSticker)
	assert.NotEqual(t, code, insp.NewSticker)

	// the original sticker is closed out, the new one is live
	st, _ := f.stickers.Resolve(code)
	assert.Equal(t, StickerReturned, st.Status)
	st, err = f.stickers.Resolve(insp.NewSticker)
	require.NoError(t, err)
	assert.Equal(t, StickerActive, st.Status)

	// restocked under the original batch and DOT at the chosen bin
	restocked := f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{Location: "A1"})
	require.Len(t, restocked, 1)
	assert.Equal(t, "B001", restocked[0].BatchNo)
	assert.Equal(t, "2201", restocked[0].DotCode)
	assert.Equal(t, 1, restocked[0].Quantity)

	o, err = f.outbound.GetOrder(f.scope, o.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderPartiallyReturned, o.Status)
}

func TestSellableReturnNeedsLocation(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 5, "A2")
	o := f.deliveredOrder(t, f.pickedOrder(t, "TYRE-A", 1, lot.ID))
	r := f.openReturn(t, o, "TYRE-A", 1)

	code := o.Items[0].Allocations[0].Stickers[0]
	_, err := f.returns.InspectUnit(f.scope, r.ID, code, "sellable", "", "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUnknownConditionRejected(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 5, "A2")
	o := f.deliveredOrder(t, f.pickedOrder(t, "TYRE-A", 1, lot.ID))
	r := f.openReturn(t, o, "TYRE-A", 1)

	code := o.Items[0].Allocations[0].Stickers[0]
	_, err := f.returns.InspectUnit(f.scope, r.ID, code, "meh", "", "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestInspectSameUnitTwiceFails(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 5, "A2")
	o := f.deliveredOrder(t, f.pickedOrder(t, "TYRE-A", 2, lot.ID))
	r := f.openReturn(t, o, "TYRE-A", 2)

	code := o.Items[0].Allocations[0].Stickers[0]
	_, err := f.returns.InspectUnit(f.scope, r.ID, code, "damaged", "", "")
	require.NoError(t, err)

	_, err = f.returns.InspectUnit(f.scope, r.ID, code, "damaged", "", "")
	var ist *InvalidStateTransitionError
	assert.ErrorAs(t, err, &ist)
}

func TestReturnAgainstUndeliveredOrderFails(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 5, "A2")
	o := f.pickedOrder(t, "TYRE-A", 2, lot.ID)

	_, err := f.returns.CreateReturn(f.scope, CreateReturnRequest{
		OrderID: o.ID,
		Items:   []CreateReturnItem{{ItemCode: "TYRE-A", Quantity: 2}},
	})
	var ist *InvalidStateTransitionError
	assert.ErrorAs(t, err, &ist)
}

func TestReturnBeyondDeliveredFails(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 5, "A2")
	o := f.deliveredOrder(t, f.pickedOrder(t, "TYRE-A", 2, lot.ID))

	_, err := f.returns.CreateReturn(f.scope, CreateReturnRequest{
		OrderID: o.ID,
		Items:   []CreateReturnItem{{ItemCode: "TYRE-A", Quantity: 3}},
	})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

// returnStoreDown fails SaveReturn on demand so the inspection tail can be
// exercised past the sticker event.
type returnStoreDown struct {
	NopStore
	down bool
}

func (s *returnStoreDown) SaveReturn(*Return) error {
	if s.down {
		return errors.New("storage offline")
	}
	return nil
}

func TestFailedInspectionLeavesNoTrace(t *testing.T) {
	f := newFixture()
	store := &returnStoreDown{}
	returns := NewReturnService(f.ledger, f.stickers, f.outbound, nil, store, zerolog.Nop())

	lot := f.seedStock(t, "TYRE-A", 5, "A2")
	o := f.deliveredOrder(t, f.pickedOrder(t, "TYRE-A", 2, lot.ID))

	r, err := returns.CreateReturn(f.scope, CreateReturnRequest{
		OrderID: o.ID,
		Items:   []CreateReturnItem{{ItemCode: "TYRE-A", Quantity: 2}},
	})
	require.NoError(t, err)

	before := f.ledger.TotalOnHand("WH01", "TYRE-A")
	code := o.Items[0].Allocations[0].Stickers[0]

	store.down = true
	_, err = returns.InspectUnit(f.scope, r.ID, code, "sellable", "A1", "")
	require.Error(t, err)

	// the failed inspection leaves nothing behind: sticker, stock, line
	// counters and order status are all as before
	st, err := f.stickers.Resolve(code)
	require.NoError(t, err)
	assert.Equal(t, StickerDelivered, st.Status)
	assert.Equal(t, before, f.ledger.TotalOnHand("WH01", "TYRE-A"))
	assert.Empty(t, f.ledger.QueryAvailable(f.scope, "TYRE-A", AvailabilityFilter{Location: "A1"}))
	assert.Equal(t, 0, r.Items[0].ProcessedQty)
	assert.Empty(t, r.Inspections)

	o, err = f.outbound.GetOrder(f.scope, o.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderDelivered, o.Status)
	assert.Equal(t, 0, o.Items[0].ReturnedQty)

	// once storage is back the same unit inspects cleanly
	store.down = false
	r, err = returns.InspectUnit(f.scope, r.ID, code, "sellable", "A1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Items[0].RestockedQty)
}

func TestCompleteReturnNeedsAllUnitsProcessed(t *testing.T) {
	f := newFixture()
	lot := f.seedStock(t, "TYRE-A", 5, "A2")
	o := f.deliveredOrder(t, f.pickedOrder(t, "TYRE-A", 2, lot.ID))
	r := f.openReturn(t, o, "TYRE-A", 2)

	code := o.Items[0].Allocations[0].Stickers[0]
	_, err := f.returns.InspectUnit(f.scope, r.ID, code, "damaged", "", "")
	require.NoError(t, err)

	_, err = f.returns.CompleteReturn(f.scope, r.ID)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
