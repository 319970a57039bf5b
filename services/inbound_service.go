package services

import (
	"sync"

	"wms-core/controllers/idgen"
	"wms-core/types"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Receipt aggregates a supplier delivery: containers with expected items,
// plus the receive lines (actual batch/DOT scans) recorded against them.
type Receipt struct {
	ID           types.SnowflakeID
	ReceiptNo    string
	SupplierCode string
	WhsCode      string
	ArrivalDate  string
	Status       ReceiptStatus
	Containers   []*Container
}

type Container struct {
	ID          types.SnowflakeID
	ContainerNo string
	Items       []*ReceiptItem
}

type ReceiptItem struct {
	ID          types.SnowflakeID
	ItemCode    string
	ExpectedQty int
	ReceivedQty int
	PutawayQty  int
	UnitCost    decimal.Decimal
	Lines       []*ReceiptLine
}

// ReceiptLine is one receive event: the batch/DOT actually scanned at the
// dock. Put-away consumes lines, so a receipt can sit half-putaway and be
// resumed at any time.
type ReceiptLine struct {
	ID         types.SnowflakeID
	BatchNo    string
	DotCode    string
	Quantity   int
	PutawayQty int
	UnitCost   decimal.Decimal
	Stickers   []string
	Putaways   []PutawayRecord
}

type PutawayRecord struct {
	ID       types.SnowflakeID
	Location string
	Quantity int
	LotID    types.SnowflakeID
}

type InboundService struct {
	mu       sync.Mutex
	receipts map[types.SnowflakeID]*Receipt
	ledger   *Ledger
	stickers *StickerRegistry
	catalog  *Catalog
	store    Store
	numbers  *numberSource
	dock     string
	log      zerolog.Logger
}

func NewInboundService(ledger *Ledger, stickers *StickerRegistry, catalog *Catalog, store Store, dockLocation string, log zerolog.Logger) *InboundService {
	return &InboundService{
		receipts: make(map[types.SnowflakeID]*Receipt),
		ledger:   ledger,
		stickers: stickers,
		catalog:  catalog,
		store:    store,
		numbers:  newNumberSource(),
		dock:     dockLocation,
		log:      log.With().Str("component", "inbound").Logger(),
	}
}

type CreateReceiptItem struct {
	ItemCode    string          `json:"item_code" validate:"required"`
	ExpectedQty int             `json:"expected_qty" validate:"required,min=1"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

type CreateReceiptContainer struct {
	ContainerNo string              `json:"container_no" validate:"required"`
	Items       []CreateReceiptItem `json:"items" validate:"required,dive"`
}

type CreateReceiptRequest struct {
	SupplierCode string                   `json:"supplier_code" validate:"required"`
	ArrivalDate  string                   `json:"arrival_date"`
	Containers   []CreateReceiptContainer `json:"containers" validate:"required,dive"`
}

func (s *InboundService) CreateReceipt(scope Scope, req CreateReceiptRequest) (*Receipt, error) {
	if len(req.Containers) == 0 {
		return nil, validationf("receipt needs at least one container")
	}
	for _, c := range req.Containers {
		if len(c.Items) == 0 {
			return nil, validationf("container %s has no items", c.ContainerNo)
		}
		for _, it := range c.Items {
			if it.ExpectedQty <= 0 {
				return nil, validationf("expected quantity for %s must be positive", it.ItemCode)
			}
			if _, ok := s.catalog.Get(it.ItemCode); !ok {
				return nil, &NotFoundError{Entity: "product", Ref: it.ItemCode}
			}
		}
	}

	r := &Receipt{
		ID:           types.SnowflakeID(idgen.GenerateID()),
		ReceiptNo:    s.numbers.Next("RC"),
		SupplierCode: req.SupplierCode,
		WhsCode:      scope.WhsCode,
		ArrivalDate:  req.ArrivalDate,
		Status:       ReceiptPending,
	}
	for _, c := range req.Containers {
		container := &Container{
			ID:          types.SnowflakeID(idgen.GenerateID()),
			ContainerNo: c.ContainerNo,
		}
		for _, it := range c.Items {
			container.Items = append(container.Items, &ReceiptItem{
				ID:          types.SnowflakeID(idgen.GenerateID()),
				ItemCode:    it.ItemCode,
				ExpectedQty: it.ExpectedQty,
				UnitCost:    it.UnitCost,
			})
		}
		r.Containers = append(r.Containers, container)
	}

	if err := s.store.SaveReceipt(r); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.receipts[r.ID] = r
	s.mu.Unlock()

	s.log.Info().Str("receipt", r.ReceiptNo).Str("supplier", req.SupplierCode).
		Int("user", scope.UserID).Msg("receipt created")
	return r, nil
}

// ReceiveItem books quantity against an expected item: stock lands at the
// dock location, one sticker per unit is issued, and the receipt status is
// recomputed.
func (s *InboundService) ReceiveItem(scope Scope, receiptID, itemID types.SnowflakeID, qty int, batchNo, dotCode string, unitCost decimal.Decimal) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, item, err := s.findItem(scope, receiptID, itemID)
	if err != nil {
		return nil, err
	}
	if r.Status.terminal() {
		return nil, &InvalidStateTransitionError{Entity: "receipt", Ref: r.ReceiptNo, From: string(r.Status), To: string(ReceiptPartiallyReceived)}
	}
	if qty <= 0 {
		return nil, validationf("receive quantity must be positive, got %d", qty)
	}
	if item.ReceivedQty+qty > item.ExpectedQty {
		return nil, validationf("receiving %d exceeds expected %d for %s (already received %d)",
			qty, item.ExpectedQty, item.ItemCode, item.ReceivedQty)
	}

	key := LotKey{ItemCode: item.ItemCode, BatchNo: batchNo, DotCode: dotCode, WhsCode: r.WhsCode, Location: s.dock}
	lot, err := s.ledger.adjust(scope, key, qty, "receive", r.ReceiptNo, "goods receipt")
	if err != nil {
		return nil, err
	}

	codes, err := s.stickers.Issue(scope, lot.ID, qty)
	if err != nil {
		s.ledger.adjust(scope, key, -qty, "compensate", r.ReceiptNo, "sticker issue failed")
		return nil, err
	}

	line := &ReceiptLine{
		ID:       types.SnowflakeID(idgen.GenerateID()),
		BatchNo:  batchNo,
		DotCode:  dotCode,
		Quantity: qty,
		UnitCost: unitCost,
		Stickers: codes,
	}
	item.Lines = append(item.Lines, line)
	item.ReceivedQty += qty

	next := s.computeStatus(r)
	if err := s.transition(r, next); err != nil {
		return nil, err
	}
	if err := s.store.SaveReceipt(r); err != nil {
		return nil, err
	}

	s.log.Info().Str("receipt", r.ReceiptNo).Str("item", item.ItemCode).
		Int("qty", qty).Str("batch", batchNo).Str("dot", dotCode).Msg("item received")
	return r, nil
}

// PutawayItem moves received stock from the dock into a storage location.
// qty 0 means the line's whole remaining quantity.
func (s *InboundService) PutawayItem(scope Scope, receiptID, lineID types.SnowflakeID, qty int, destination string) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, item, line, err := s.findLine(scope, receiptID, lineID)
	if err != nil {
		return nil, err
	}
	if r.Status.terminal() {
		return nil, &InvalidStateTransitionError{Entity: "receipt", Ref: r.ReceiptNo, From: string(r.Status), To: string(ReceiptPartiallyPutaway)}
	}

	remaining := line.Quantity - line.PutawayQty
	if qty == 0 {
		qty = remaining
	}
	if qty <= 0 || qty > remaining {
		return nil, validationf("putaway quantity %d out of range, line has %d at the dock", qty, remaining)
	}

	dockKey := LotKey{ItemCode: item.ItemCode, BatchNo: line.BatchNo, DotCode: line.DotCode, WhsCode: r.WhsCode, Location: s.dock}
	dockLot, err := s.ledger.FindLot(dockKey)
	if err != nil {
		return nil, err
	}

	dest, err := s.ledger.move(scope, dockLot.ID, "", destination, qty, "putaway", r.ReceiptNo, "put-away")
	if err != nil {
		return nil, err
	}
	if _, err := s.stickers.rebindLot(dockLot.ID, dest.ID, qty); err != nil {
		s.ledger.move(scope, dest.ID, "", s.dock, qty, "compensate", r.ReceiptNo, "putaway rollback")
		return nil, err
	}

	line.PutawayQty += qty
	line.Putaways = append(line.Putaways, PutawayRecord{
		ID:       types.SnowflakeID(idgen.GenerateID()),
		Location: destination,
		Quantity: qty,
		LotID:    dest.ID,
	})
	item.PutawayQty += qty

	next := s.computeStatus(r)
	if err := s.transition(r, next); err != nil {
		return nil, err
	}
	if err := s.store.SaveReceipt(r); err != nil {
		return nil, err
	}

	s.log.Info().Str("receipt", r.ReceiptNo).Str("item", item.ItemCode).
		Int("qty", qty).Str("to", destination).Msg("item put away")
	return r, nil
}

// CancelReceipt reverses every quantity the receipt ever added: dock
// remainders and put-away stock alike. Either all compensations apply or
// none do.
func (s *InboundService) CancelReceipt(scope Scope, receiptID types.SnowflakeID) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.find(scope, receiptID)
	if err != nil {
		return nil, err
	}
	if !r.Status.canTransition(ReceiptCancelled) {
		return nil, &InvalidStateTransitionError{Entity: "receipt", Ref: r.ReceiptNo, From: string(r.Status), To: string(ReceiptCancelled)}
	}

	type reversal struct {
		key LotKey
		qty int
	}
	applied := make([]reversal, 0)

	rollback := func() {
		for i := len(applied) - 1; i >= 0; i-- {
			s.ledger.adjust(scope, applied[i].key, applied[i].qty, "compensate", r.ReceiptNo, "cancel rollback")
		}
	}

	voidable := make([]string, 0)
	for _, c := range r.Containers {
		for _, item := range c.Items {
			for _, line := range item.Lines {
				dockQty := line.Quantity - line.PutawayQty
				if dockQty > 0 {
					key := LotKey{ItemCode: item.ItemCode, BatchNo: line.BatchNo, DotCode: line.DotCode, WhsCode: r.WhsCode, Location: s.dock}
					if _, err := s.ledger.adjust(scope, key, -dockQty, "cancel", r.ReceiptNo, "receipt cancelled"); err != nil {
						rollback()
						return nil, err
					}
					applied = append(applied, reversal{key: key, qty: dockQty})
				}
				for _, p := range line.Putaways {
					key := LotKey{ItemCode: item.ItemCode, BatchNo: line.BatchNo, DotCode: line.DotCode, WhsCode: r.WhsCode, Location: p.Location}
					if _, err := s.ledger.adjust(scope, key, -p.Quantity, "cancel", r.ReceiptNo, "receipt cancelled"); err != nil {
						rollback()
						return nil, err
					}
					applied = append(applied, reversal{key: key, qty: p.Quantity})
				}
				voidable = append(voidable, line.Stickers...)
			}
		}
	}

	if err := s.transition(r, ReceiptCancelled); err != nil {
		rollback()
		return nil, err
	}
	if err := s.store.SaveReceipt(r); err != nil {
		rollback()
		return nil, err
	}

	// voided only once the cancel cannot fail anymore; a voiding error
	// leaves stickers bound to retired lots, which are unclaimable
	if err := s.stickers.voidCodes(voidable); err != nil {
		s.log.Warn().Err(err).Str("receipt", r.ReceiptNo).Msg("sticker voiding failed after cancel")
	}

	s.log.Warn().Str("receipt", r.ReceiptNo).Int("user", scope.UserID).Msg("receipt cancelled")
	return r, nil
}

func (s *InboundService) GetReceipt(scope Scope, receiptID types.SnowflakeID) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(scope, receiptID)
}

func (s *InboundService) ListReceipts(scope Scope) []*Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Receipt, 0, len(s.receipts))
	for _, r := range s.receipts {
		if r.WhsCode == scope.WhsCode {
			out = append(out, r)
		}
	}
	return out
}

// Restore loads persisted receipts at startup.
func (s *InboundService) Restore(receipts []*Receipt, lastNo string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range receipts {
		s.receipts[r.ID] = r
	}
	s.numbers.Restore("RC", lastNo)
}

func (s *InboundService) find(scope Scope, receiptID types.SnowflakeID) (*Receipt, error) {
	r, ok := s.receipts[receiptID]
	if !ok || r.WhsCode != scope.WhsCode {
		return nil, &NotFoundError{Entity: "receipt", Ref: receiptID.String()}
	}
	return r, nil
}

func (s *InboundService) findItem(scope Scope, receiptID, itemID types.SnowflakeID) (*Receipt, *ReceiptItem, error) {
	r, err := s.find(scope, receiptID)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range r.Containers {
		for _, item := range c.Items {
			if item.ID == itemID {
				return r, item, nil
			}
		}
	}
	return nil, nil, &NotFoundError{Entity: "receipt item", Ref: itemID.String()}
}

func (s *InboundService) findLine(scope Scope, receiptID, lineID types.SnowflakeID) (*Receipt, *ReceiptItem, *ReceiptLine, error) {
	r, err := s.find(scope, receiptID)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, c := range r.Containers {
		for _, item := range c.Items {
			for _, line := range item.Lines {
				if line.ID == lineID {
					return r, item, line, nil
				}
			}
		}
	}
	return nil, nil, nil, &NotFoundError{Entity: "receipt line", Ref: lineID.String()}
}

// computeStatus derives the lifecycle state from quantities, so partial
// receipts and partial put-aways resume naturally.
func (s *InboundService) computeStatus(r *Receipt) ReceiptStatus {
	expected, received, putaway := 0, 0, 0
	for _, c := range r.Containers {
		for _, item := range c.Items {
			expected += item.ExpectedQty
			received += item.ReceivedQty
			putaway += item.PutawayQty
		}
	}

	switch {
	case received == 0:
		return ReceiptPending
	case putaway == 0 && received < expected:
		return ReceiptPartiallyReceived
	case putaway == 0:
		return ReceiptReceived
	case putaway == received && received == expected:
		return ReceiptCompleted
	default:
		return ReceiptPartiallyPutaway
	}
}

func (s *InboundService) transition(r *Receipt, to ReceiptStatus) error {
	if to == r.Status {
		return nil
	}
	if !r.Status.canTransition(to) {
		return &InvalidStateTransitionError{Entity: "receipt", Ref: r.ReceiptNo, From: string(r.Status), To: string(to)}
	}
	r.Status = to
	return nil
}
