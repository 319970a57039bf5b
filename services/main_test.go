package services

import (
	"os"
	"testing"

	"wms-core/controllers/idgen"
	"wms-core/types"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	idgen.Init()
	os.Exit(m.Run())
}

// fixture wires a full engine against the in-memory store: one warehouse,
// a dock, two uncapped bins, one 10-cap bin and one 3-cap bin.
type fixture struct {
	capacity *CapacityRegistry
	catalog  *Catalog
	ledger   *Ledger
	stickers *StickerRegistry
	inbound  *InboundService
	outbound *OutboundService
	returns  *ReturnService
	transfer *TransferService
	scope    Scope
}

func newFixture() *fixture {
	log := zerolog.Nop()
	store := NopStore{}

	capacity := NewCapacityRegistry(log)
	catalog := NewCatalog()
	ledger := NewLedger(capacity, catalog, store, log)
	stickers := NewStickerRegistry(store, log)

	f := &fixture{
		capacity: capacity,
		catalog:  catalog,
		ledger:   ledger,
		stickers: stickers,
		inbound:  NewInboundService(ledger, stickers, catalog, store, "DOCK", log),
		outbound: NewOutboundService(ledger, stickers, catalog, store, log),
		transfer: NewTransferService(ledger, stickers, store, log),
		scope:    Scope{WhsCode: "WH01", UserID: 7},
	}
	f.returns = NewReturnService(ledger, stickers, f.outbound, nil, store, log)

	capacity.Register(LocationInfo{Code: "DOCK", WhsCode: "WH01", Type: "dock"})
	capacity.Register(LocationInfo{Code: "STAGE", WhsCode: "WH01", Type: "staging"})
	capacity.Register(LocationInfo{Code: "A1", WhsCode: "WH01", Type: "bin", Capacity: 10})
	capacity.Register(LocationInfo{Code: "A2", WhsCode: "WH01", Type: "bin"})
	capacity.Register(LocationInfo{Code: "B1", WhsCode: "WH01", Type: "bin", Capacity: 3})
	capacity.Register(LocationInfo{Code: "C1", WhsCode: "WH02", Type: "bin"})

	catalog.Register(ProductInfo{ItemCode: "TYRE-A", Uom: "PCS", ShelfLifeMonths: 60})
	catalog.Register(ProductInfo{ItemCode: "TYRE-B", Uom: "PCS", ShelfLifeMonths: 60})
	return f
}

// receive books qty of an item through a one-line receipt, leaving the
// stock at the dock with stickers issued.
func (f *fixture) receive(t *testing.T, item string, qty int) *Receipt {
	t.Helper()

	r, err := f.inbound.CreateReceipt(f.scope, CreateReceiptRequest{
		SupplierCode: "SUP01",
		ArrivalDate:  "2026-08-30",
		Containers: []CreateReceiptContainer{{
			ContainerNo: "CONT-1",
			Items:       []CreateReceiptItem{{ItemCode: item, ExpectedQty: qty, UnitCost: decimal.NewFromInt(100)}},
		}},
	})
	require.NoError(t, err)

	itemID := r.Containers[0].Items[0].ID
	r, err = f.inbound.ReceiveItem(f.scope, r.ID, itemID, qty, "B001", "2201", decimal.NewFromInt(100))
	require.NoError(t, err)
	return r
}

// seedStock receives qty of an item and puts it away, returning the lot at
// the destination.
func (f *fixture) seedStock(t *testing.T, item string, qty int, location string) LotView {
	t.Helper()

	r := f.receive(t, item, qty)
	line := r.Containers[0].Items[0].Lines[0]
	if location != "DOCK" {
		_, err := f.inbound.PutawayItem(f.scope, r.ID, line.ID, qty, location)
		require.NoError(t, err)
	}

	lot, err := f.ledger.FindLot(LotKey{ItemCode: item, BatchNo: "B001", DotCode: "2201", WhsCode: "WH01", Location: location})
	require.NoError(t, err)
	return lot
}

// pickedOrder creates a one-line order and picks it fully from the given lot.
func (f *fixture) pickedOrder(t *testing.T, item string, qty int, lotID types.SnowflakeID) *Order {
	t.Helper()

	o, err := f.outbound.CreateOrder(f.scope, CreateOrderRequest{
		CustomerCode: "CUST01",
		Items:        []CreateOrderItem{{ItemCode: item, Quantity: qty}},
	})
	require.NoError(t, err)
	o, err = f.outbound.PickItem(f.scope, o.ID, o.Items[0].ID, lotID, qty)
	require.NoError(t, err)
	return o
}

// deliveredOrder walks a picked order through staging, driver assignment,
// pickup scans, shipping and delivery confirmation.
func (f *fixture) deliveredOrder(t *testing.T, o *Order) *Order {
	t.Helper()

	_, err := f.outbound.StageOrder(f.scope, o.ID, "STAGE")
	require.NoError(t, err)
	_, err = f.outbound.AssignDriver(f.scope, o.ID, "Budi", "internal", "B 9921 XX")
	require.NoError(t, err)
	for _, item := range o.Items {
		for _, a := range item.Allocations {
			for _, code := range a.Stickers {
				_, err = f.outbound.ScanPickupUnit(f.scope, o.ID, code)
				require.NoError(t, err)
			}
		}
	}
	_, err = f.outbound.ShipOrder(f.scope, o.ID)
	require.NoError(t, err)
	_, err = f.outbound.StartDelivery(f.scope, o.ID)
	require.NoError(t, err)
	o, err = f.outbound.ConfirmDelivery(f.scope, o.ID, "Rina", "0812-555-0101", "https://pod.example/1.jpg")
	require.NoError(t, err)
	return o
}
