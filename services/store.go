package services

// Store is the persistence port. The engine owns the authoritative state in
// memory; every mutation pushes its result through the store inside the same
// operation. The store is expected to write each call atomically.
//
// A failed save is surfaced to the caller and the in-memory change is undone,
// so ledger state and rows never diverge.
type Store interface {
	SaveLot(lot *Lot) error
	SaveMovement(m *Movement) error
	SaveStickers(stickers []*Sticker) error
	SaveReceipt(r *Receipt) error
	SaveOrder(o *Order) error
	SaveReturn(r *Return) error
	SaveTransfer(t *Transfer) error
}

// Movement is one audit row: a signed quantity change or a move leg. On a
// cross-warehouse move FromWhsCode carries the source warehouse; otherwise
// it is empty and WhsCode covers both ends.
type Movement struct {
	TransType    string
	RefNo        string
	ItemCode     string
	BatchNo      string
	DotCode      string
	WhsCode      string
	FromWhsCode  string
	FromLocation string
	ToLocation   string
	Quantity     int
	Reason       string
	UserID       int
}

// NopStore keeps everything in memory only. Used by tests.
type NopStore struct{}

func (NopStore) SaveLot(*Lot) error            { return nil }
func (NopStore) SaveMovement(*Movement) error  { return nil }
func (NopStore) SaveStickers([]*Sticker) error { return nil }
func (NopStore) SaveReceipt(*Receipt) error    { return nil }
func (NopStore) SaveOrder(*Order) error        { return nil }
func (NopStore) SaveReturn(*Return) error      { return nil }
func (NopStore) SaveTransfer(*Transfer) error  { return nil }
