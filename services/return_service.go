package services

import (
	"sync"
	"time"

	"wms-core/controllers/idgen"
	"wms-core/types"

	"github.com/rs/zerolog"
)

// ConditionAction says what happens to a returned unit once an inspector
// has graded it. The map is configuration, so sites can add their own
// grades without code changes.
type ConditionAction struct {
	Restock bool
}

func DefaultConditionActions() map[string]ConditionAction {
	return map[string]ConditionAction{
		"sellable":   {Restock: true},
		"damaged":    {Restock: false},
		"scrap":      {Restock: false},
		"quarantine": {Restock: false},
	}
}

// Return is a customer return against a delivered order: expected lines
// plus the per-unit inspection trail.
type Return struct {
	ID          types.SnowflakeID
	ReturnNo    string
	OrderID     types.SnowflakeID
	OrderNo     string
	WhsCode     string
	Status      ReturnStatus
	Items       []*ReturnItem
	Inspections []Inspection
}

type ReturnItem struct {
	ID           types.SnowflakeID
	ItemCode     string
	ExpectedQty  int
	ProcessedQty int
	RestockedQty int
}

type Inspection struct {
	Sticker    string
	ItemCode   string
	Condition  string
	Restocked  bool
	Location   string
	NewSticker string
	Notes      string
	At         time.Time
}

type ReturnService struct {
	mu       sync.Mutex
	returns  map[types.SnowflakeID]*Return
	ledger   *Ledger
	stickers *StickerRegistry
	outbound *OutboundService
	actions  map[string]ConditionAction
	store    Store
	numbers  *numberSource
	log      zerolog.Logger
}

func NewReturnService(ledger *Ledger, stickers *StickerRegistry, outbound *OutboundService, actions map[string]ConditionAction, store Store, log zerolog.Logger) *ReturnService {
	if actions == nil {
		actions = DefaultConditionActions()
	}
	return &ReturnService{
		returns:  make(map[types.SnowflakeID]*Return),
		ledger:   ledger,
		stickers: stickers,
		outbound: outbound,
		actions:  actions,
		store:    store,
		numbers:  newNumberSource(),
		log:      log.With().Str("component", "returns").Logger(),
	}
}

type CreateReturnItem struct {
	ItemCode string `json:"item_code" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type CreateReturnRequest struct {
	OrderID types.SnowflakeID  `json:"order_id" validate:"required"`
	Items   []CreateReturnItem `json:"items" validate:"required,dive"`
}

// CreateReturn opens a return against a delivered order. Each line is
// capped at the quantity actually delivered and not already returned.
func (s *ReturnService) CreateReturn(scope Scope, req CreateReturnRequest) (*Return, error) {
	if len(req.Items) == 0 {
		return nil, validationf("return needs at least one item")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, validationf("return quantity for %s must be positive", it.ItemCode)
		}
		eligible, err := s.outbound.deliveredItem(scope, req.OrderID, it.ItemCode)
		if err != nil {
			return nil, err
		}
		if it.Quantity > eligible {
			return nil, validationf("returning %d of %s but only %d is eligible", it.Quantity, it.ItemCode, eligible)
		}
	}

	order, err := s.outbound.GetOrder(scope, req.OrderID)
	if err != nil {
		return nil, err
	}

	r := &Return{
		ID:       types.SnowflakeID(idgen.GenerateID()),
		ReturnNo: s.numbers.Next("RT"),
		OrderID:  order.ID,
		OrderNo:  order.OrderNo,
		WhsCode:  scope.WhsCode,
		Status:   ReturnOpen,
	}
	for _, it := range req.Items {
		r.Items = append(r.Items, &ReturnItem{
			ID:          types.SnowflakeID(idgen.GenerateID()),
			ItemCode:    it.ItemCode,
			ExpectedQty: it.Quantity,
		})
	}

	if err := s.store.SaveReturn(r); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.returns[r.ID] = r
	s.mu.Unlock()

	s.log.Info().Str("return", r.ReturnNo).Str("order", r.OrderNo).
		Int("user", scope.UserID).Msg("return created")
	return r, nil
}

// InspectUnit processes one returned unit by its sticker. Sellable units go
// back on the shelf under their original batch and DOT with a fresh
// sticker; everything else is recorded and kept out of stock.
func (s *ReturnService) InspectUnit(scope Scope, returnID types.SnowflakeID, code, condition, location, notes string) (*Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.find(scope, returnID)
	if err != nil {
		return nil, err
	}
	if r.Status != ReturnOpen {
		return nil, &InvalidStateTransitionError{Entity: "return", Ref: r.ReturnNo, From: string(r.Status), To: string(ReturnOpen)}
	}

	action, ok := s.actions[condition]
	if !ok {
		return nil, validationf("unknown condition %q", condition)
	}
	if action.Restock && location == "" {
		return nil, validationf("restock location is required for condition %q", condition)
	}

	st, err := s.stickers.Resolve(code)
	if err != nil {
		return nil, err
	}
	if st.OutboundID != r.OrderID {
		return nil, validationf("sticker %s does not belong to order %s", code, r.OrderNo)
	}
	if st.Status != StickerDelivered {
		return nil, &InvalidStateTransitionError{Entity: "sticker", Ref: code, From: string(st.Status), To: string(StickerReturned)}
	}

	lot, err := s.ledger.LotByID(st.LotID)
	if err != nil {
		return nil, err
	}

	var item *ReturnItem
	for _, it := range r.Items {
		if it.ItemCode == lot.ItemCode {
			item = it
			break
		}
	}
	if item == nil {
		return nil, validationf("return %s does not expect item %s", r.ReturnNo, lot.ItemCode)
	}
	if item.ProcessedQty >= item.ExpectedQty {
		return nil, validationf("return line %s is already fully processed", item.ItemCode)
	}

	insp := Inspection{
		Sticker:   code,
		ItemCode:  lot.ItemCode,
		Condition: condition,
		Restocked: action.Restock,
		Location:  location,
		Notes:     notes,
		At:        time.Now(),
	}

	key := LotKey{ItemCode: lot.ItemCode, BatchNo: lot.BatchNo, DotCode: lot.DotCode, WhsCode: scope.WhsCode, Location: location}
	if action.Restock {
		restocked, err := s.ledger.adjust(scope, key, 1, "return", r.ReturnNo, "return restock")
		if err != nil {
			return nil, err
		}
		codes, err := s.stickers.Issue(scope, restocked.ID, 1)
		if err != nil {
			s.ledger.adjust(scope, key, -1, "compensate", r.ReturnNo, "restock sticker failed")
			return nil, err
		}
		insp.NewSticker = codes[0]
	}

	// undo rewinds the restock and the sticker event once either has been
	// applied, for failures later in the inspection
	undo := func() {
		s.stickers.restoreStatus(code, StickerDelivered)
		if action.Restock {
			s.stickers.voidCodes([]string{insp.NewSticker})
			s.ledger.adjust(scope, key, -1, "compensate", r.ReturnNo, "inspection rollback")
		}
	}

	if _, err := s.stickers.MarkEvent(scope, code, EventReturned); err != nil {
		if action.Restock {
			s.stickers.voidCodes([]string{insp.NewSticker})
			s.ledger.adjust(scope, key, -1, "compensate", r.ReturnNo, "inspection rollback")
		}
		return nil, err
	}

	item.ProcessedQty++
	if action.Restock {
		item.RestockedQty++
	}
	r.Inspections = append(r.Inspections, insp)

	unwind := func() {
		item.ProcessedQty--
		if action.Restock {
			item.RestockedQty--
		}
		r.Inspections = r.Inspections[:len(r.Inspections)-1]
		undo()
	}

	if err := s.outbound.registerReturn(scope, r.OrderID, item.ItemCode, 1); err != nil {
		unwind()
		return nil, err
	}
	if err := s.store.SaveReturn(r); err != nil {
		s.outbound.unregisterReturn(scope, r.OrderID, item.ItemCode, 1)
		unwind()
		return nil, err
	}

	s.log.Info().Str("return", r.ReturnNo).Str("sticker", code).
		Str("condition", condition).Bool("restocked", action.Restock).Msg("unit inspected")
	return r, nil
}

// CompleteReturn closes the return once every expected unit is processed.
func (s *ReturnService) CompleteReturn(scope Scope, returnID types.SnowflakeID) (*Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.find(scope, returnID)
	if err != nil {
		return nil, err
	}
	if r.Status != ReturnOpen {
		return nil, &InvalidStateTransitionError{Entity: "return", Ref: r.ReturnNo, From: string(r.Status), To: string(ReturnCompleted)}
	}
	for _, it := range r.Items {
		if it.ProcessedQty < it.ExpectedQty {
			return nil, validationf("return line %s has %d of %d units processed",
				it.ItemCode, it.ProcessedQty, it.ExpectedQty)
		}
	}

	r.Status = ReturnCompleted
	if err := s.store.SaveReturn(r); err != nil {
		r.Status = ReturnOpen
		return nil, err
	}

	s.log.Info().Str("return", r.ReturnNo).Msg("return completed")
	return r, nil
}

func (s *ReturnService) GetReturn(scope Scope, returnID types.SnowflakeID) (*Return, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(scope, returnID)
}

func (s *ReturnService) ListReturns(scope Scope) []*Return {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Return, 0, len(s.returns))
	for _, r := range s.returns {
		if r.WhsCode == scope.WhsCode {
			out = append(out, r)
		}
	}
	return out
}

// Restore loads persisted returns at startup.
func (s *ReturnService) Restore(returns []*Return, lastNo string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range returns {
		s.returns[r.ID] = r
	}
	s.numbers.Restore("RT", lastNo)
}

func (s *ReturnService) find(scope Scope, returnID types.SnowflakeID) (*Return, error) {
	r, ok := s.returns[returnID]
	if !ok || r.WhsCode != scope.WhsCode {
		return nil, &NotFoundError{Entity: "return", Ref: returnID.String()}
	}
	return r, nil
}
