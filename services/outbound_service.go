package services

import (
	"sync"
	"time"

	"wms-core/controllers/idgen"
	"wms-core/types"

	"github.com/rs/zerolog"
)

// Order is an outbound shipment: customer lines, pick allocations against
// concrete lots, driver assignment and delivery confirmation.
type Order struct {
	ID              types.SnowflakeID
	OrderNo         string
	CustomerCode    string
	WhsCode         string
	DeliveryDate    string
	Status          OrderStatus
	Items           []*OrderItem
	StagingLocation string
	DriverName      string
	DriverType      string // internal, third_party
	VehicleNo       string
	ReceiverName    string
	ReceiverPhone   string
	PhotoURL        string
	Failures        []DeliveryFailure
}

type OrderItem struct {
	ID          types.SnowflakeID
	ItemCode    string
	OrderedQty  int
	PickedQty   int
	ReturnedQty int
	Allocations []*PickAllocation
}

// PickAllocation remembers the exact lot key a pick came from, so a cancel
// can put the stock back where it was taken.
type PickAllocation struct {
	ID       types.SnowflakeID
	LotID    types.SnowflakeID
	Key      LotKey
	Quantity int
	Stickers []string
}

type DeliveryFailure struct {
	Reason string
	Notes  string
	At     time.Time
}

type OutboundService struct {
	mu       sync.Mutex
	orders   map[types.SnowflakeID]*Order
	ledger   *Ledger
	stickers *StickerRegistry
	catalog  *Catalog
	store    Store
	numbers  *numberSource
	log      zerolog.Logger
}

func NewOutboundService(ledger *Ledger, stickers *StickerRegistry, catalog *Catalog, store Store, log zerolog.Logger) *OutboundService {
	return &OutboundService{
		orders:   make(map[types.SnowflakeID]*Order),
		ledger:   ledger,
		stickers: stickers,
		catalog:  catalog,
		store:    store,
		numbers:  newNumberSource(),
		log:      log.With().Str("component", "outbound").Logger(),
	}
}

type CreateOrderItem struct {
	ItemCode string `json:"item_code" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	CustomerCode string            `json:"customer_code" validate:"required"`
	DeliveryDate string            `json:"delivery_date"`
	Items        []CreateOrderItem `json:"items" validate:"required,dive"`
}

func (s *OutboundService) CreateOrder(scope Scope, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, validationf("order needs at least one item")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, validationf("order quantity for %s must be positive", it.ItemCode)
		}
		if _, ok := s.catalog.Get(it.ItemCode); !ok {
			return nil, &NotFoundError{Entity: "product", Ref: it.ItemCode}
		}
	}

	o := &Order{
		ID:           types.SnowflakeID(idgen.GenerateID()),
		OrderNo:      s.numbers.Next("OB"),
		CustomerCode: req.CustomerCode,
		WhsCode:      scope.WhsCode,
		DeliveryDate: req.DeliveryDate,
		Status:       OrderNew,
	}
	for _, it := range req.Items {
		o.Items = append(o.Items, &OrderItem{
			ID:         types.SnowflakeID(idgen.GenerateID()),
			ItemCode:   it.ItemCode,
			OrderedQty: it.Quantity,
		})
	}
	// a validated order is immediately ready to pick
	if err := s.transition(o, OrderPendingPick); err != nil {
		return nil, err
	}

	if err := s.store.SaveOrder(o); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()

	s.log.Info().Str("order", o.OrderNo).Str("customer", req.CustomerCode).
		Int("user", scope.UserID).Msg("order created")
	return o, nil
}

// PickItem allocates quantity from one specific lot to an order line. The
// quantity check against the ordered amount happens before any stock is
// touched, so an over-pick leaves the ledger untouched.
func (s *OutboundService) PickItem(scope Scope, orderID, itemID, lotID types.SnowflakeID, qty int) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, item, err := s.findItem(scope, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if o.Status != OrderPendingPick && o.Status != OrderPartiallyPicked {
		return nil, &InvalidStateTransitionError{Entity: "order", Ref: o.OrderNo, From: string(o.Status), To: string(OrderPartiallyPicked)}
	}
	if qty <= 0 {
		return nil, validationf("pick quantity must be positive, got %d", qty)
	}
	if item.PickedQty+qty > item.OrderedQty {
		return nil, validationf("picking %d exceeds ordered %d for %s (already picked %d)",
			qty, item.OrderedQty, item.ItemCode, item.PickedQty)
	}

	lot, err := s.ledger.LotByID(lotID)
	if err != nil {
		return nil, err
	}
	if lot.ItemCode != item.ItemCode {
		return nil, validationf("lot %s holds %s, order line wants %s", lotID, lot.ItemCode, item.ItemCode)
	}
	if lot.WhsCode != scope.WhsCode {
		return nil, &NotFoundError{Entity: "lot", Ref: lotID.String()}
	}
	key := LotKey{ItemCode: lot.ItemCode, BatchNo: lot.BatchNo, DotCode: lot.DotCode, WhsCode: lot.WhsCode, Location: lot.Location}

	if _, err := s.ledger.adjust(scope, key, -qty, "picking", o.OrderNo, "order pick"); err != nil {
		return nil, err
	}

	codes, err := s.stickers.claimForOrder(lotID, o.ID, qty)
	if err != nil {
		s.ledger.adjust(scope, key, qty, "compensate", o.OrderNo, "sticker claim failed")
		return nil, err
	}

	item.Allocations = append(item.Allocations, &PickAllocation{
		ID:       types.SnowflakeID(idgen.GenerateID()),
		LotID:    lotID,
		Key:      key,
		Quantity: qty,
		Stickers: codes,
	})
	item.PickedQty += qty

	if err := s.transition(o, s.pickStatus(o)); err != nil {
		return nil, err
	}
	if err := s.store.SaveOrder(o); err != nil {
		return nil, err
	}

	s.log.Info().Str("order", o.OrderNo).Str("item", item.ItemCode).
		Int("qty", qty).Str("lot", key.String()).Msg("item picked")
	return o, nil
}

// StageOrder closes the pick phase and parks the order at a named staging
// area. Every line must be fully picked.
func (s *OutboundService) StageOrder(scope Scope, orderID types.SnowflakeID, stagingLocation string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return nil, err
	}
	if stagingLocation == "" {
		return nil, validationf("staging location is required")
	}
	if err := s.transition(o, OrderStaged); err != nil {
		return nil, err
	}
	o.StagingLocation = stagingLocation
	if err := s.store.SaveOrder(o); err != nil {
		return nil, err
	}

	s.log.Info().Str("order", o.OrderNo).Str("staging", stagingLocation).Msg("order staged")
	return o, nil
}

func (s *OutboundService) AssignDriver(scope Scope, orderID types.SnowflakeID, driverName, driverType, vehicleNo string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return nil, err
	}
	if driverName == "" {
		return nil, validationf("driver name is required")
	}
	if driverType == "" {
		driverType = "internal"
	}
	if driverType != "internal" && driverType != "third_party" {
		return nil, validationf("unknown driver type %q", driverType)
	}
	if err := s.transition(o, OrderAssigned); err != nil {
		return nil, err
	}
	o.DriverName = driverName
	o.DriverType = driverType
	o.VehicleNo = vehicleNo
	if err := s.store.SaveOrder(o); err != nil {
		return nil, err
	}

	s.log.Info().Str("order", o.OrderNo).Str("driver", driverName).
		Str("type", driverType).Msg("driver assigned")
	return o, nil
}

// ScanPickupUnit records the driver scanning one sticker at pickup.
func (s *OutboundService) ScanPickupUnit(scope Scope, orderID types.SnowflakeID, code string) (StickerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return StickerView{}, err
	}
	if o.Status != OrderAssigned {
		return StickerView{}, &InvalidStateTransitionError{Entity: "order", Ref: o.OrderNo, From: string(o.Status), To: string(OrderAssigned)}
	}

	st, err := s.stickers.Resolve(code)
	if err != nil {
		return StickerView{}, err
	}
	if st.OutboundID != o.ID {
		return StickerView{}, validationf("sticker %s does not belong to order %s", code, o.OrderNo)
	}
	return s.stickers.MarkEvent(scope, code, EventPicked)
}

// ShipOrder releases the truck. Every allocated unit must have been
// scanned first.
func (s *OutboundService) ShipOrder(scope Scope, orderID types.SnowflakeID) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != OrderAssigned {
		return nil, &InvalidStateTransitionError{Entity: "order", Ref: o.OrderNo, From: string(o.Status), To: string(OrderShipped)}
	}
	if !s.stickers.allMarked(o.ID, StickerPicked) {
		return nil, validationf("order %s has unscanned units", o.OrderNo)
	}
	if err := s.transition(o, OrderShipped); err != nil {
		return nil, err
	}
	if err := s.store.SaveOrder(o); err != nil {
		return nil, err
	}

	s.log.Info().Str("order", o.OrderNo).Msg("order shipped")
	return o, nil
}

func (s *OutboundService) StartDelivery(scope Scope, orderID types.SnowflakeID) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(o, OrderOutForDelivery); err != nil {
		return nil, err
	}
	if err := s.store.SaveOrder(o); err != nil {
		return nil, err
	}
	return o, nil
}

// ConfirmDelivery records proof of delivery and marks every unit delivered.
func (s *OutboundService) ConfirmDelivery(scope Scope, orderID types.SnowflakeID, receiverName, receiverPhone, photoURL string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return nil, err
	}
	if receiverName == "" {
		return nil, validationf("receiver name is required")
	}
	if err := s.transition(o, OrderDelivered); err != nil {
		return nil, err
	}
	o.ReceiverName = receiverName
	o.ReceiverPhone = receiverPhone
	o.PhotoURL = photoURL

	for _, st := range s.stickers.orderCodes(o.ID) {
		if st.Status == StickerPicked {
			if _, err := s.stickers.MarkEvent(scope, st.Code, EventDelivered); err != nil {
				return nil, err
			}
		}
	}
	if err := s.store.SaveOrder(o); err != nil {
		return nil, err
	}

	s.log.Info().Str("order", o.OrderNo).Str("receiver", receiverName).Msg("delivery confirmed")
	return o, nil
}

// RecordDeliveryFailure notes a failed attempt; the order stays out for
// delivery so it can be retried.
func (s *OutboundService) RecordDeliveryFailure(scope Scope, orderID types.SnowflakeID, reason, notes string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != OrderOutForDelivery {
		return nil, validationf("order %s is not out for delivery", o.OrderNo)
	}
	if reason == "" {
		return nil, validationf("failure reason is required")
	}
	o.Failures = append(o.Failures, DeliveryFailure{Reason: reason, Notes: notes, At: time.Now()})
	if err := s.store.SaveOrder(o); err != nil {
		return nil, err
	}

	s.log.Warn().Str("order", o.OrderNo).Str("reason", reason).Msg("delivery failed")
	return o, nil
}

// CancelOrder returns every picked quantity to the lot key it came from and
// releases the claimed stickers. Allowed until the stock physically leaves.
func (s *OutboundService) CancelOrder(scope Scope, orderID types.SnowflakeID) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.cancellable() {
		return nil, &InvalidStateTransitionError{Entity: "order", Ref: o.OrderNo, From: string(o.Status), To: string(OrderCancelled)}
	}

	type applied struct {
		key LotKey
		qty int
	}
	done := make([]applied, 0)
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			s.ledger.adjust(scope, done[i].key, -done[i].qty, "compensate", o.OrderNo, "cancel rollback")
		}
	}

	for _, item := range o.Items {
		for _, a := range item.Allocations {
			restored, err := s.ledger.adjust(scope, a.Key, a.Quantity, "cancel", o.OrderNo, "order cancelled")
			if err != nil {
				rollback()
				return nil, err
			}
			done = append(done, applied{key: a.Key, qty: a.Quantity})
			// compensated stock may land in a fresh lot when the original
			// drained dry, the stickers have to follow it
			if err := s.stickers.rebindCodes(a.Stickers, restored.ID); err != nil {
				rollback()
				return nil, err
			}
		}
	}
	if err := s.stickers.releaseOrder(o.ID); err != nil {
		rollback()
		return nil, err
	}

	if err := s.transition(o, OrderCancelled); err != nil {
		rollback()
		return nil, err
	}
	if err := s.store.SaveOrder(o); err != nil {
		rollback()
		return nil, err
	}

	s.log.Warn().Str("order", o.OrderNo).Int("user", scope.UserID).Msg("order cancelled")
	return o, nil
}

func (s *OutboundService) GetOrder(scope Scope, orderID types.SnowflakeID) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(scope, orderID)
}

func (s *OutboundService) ListOrders(scope Scope) []*Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Order, 0, len(s.orders))
	for _, o := range s.orders {
		if o.WhsCode == scope.WhsCode {
			out = append(out, o)
		}
	}
	return out
}

// Restore loads persisted orders at startup.
func (s *OutboundService) Restore(orders []*Order, lastNo string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range orders {
		s.orders[o.ID] = o
	}
	s.numbers.Restore("OB", lastNo)
}

// registerReturn is called by the returns workflow once inspected quantity
// has been processed for a delivered order line.
func (s *OutboundService) registerReturn(scope Scope, orderID types.SnowflakeID, itemCode string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return err
	}

	var item *OrderItem
	for _, it := range o.Items {
		if it.ItemCode == itemCode {
			item = it
			break
		}
	}
	if item == nil {
		return &NotFoundError{Entity: "order item", Ref: itemCode}
	}
	if item.ReturnedQty+qty > item.PickedQty {
		return validationf("returning %d exceeds delivered %d for %s (already returned %d)",
			qty, item.PickedQty, itemCode, item.ReturnedQty)
	}
	prev := o.Status
	item.ReturnedQty += qty

	next := OrderPartiallyReturned
	if s.fullyReturned(o) {
		next = OrderReturned
	}
	if err := s.transition(o, next); err != nil {
		item.ReturnedQty -= qty
		return err
	}
	if err := s.store.SaveOrder(o); err != nil {
		item.ReturnedQty -= qty
		o.Status = prev
		return err
	}
	return nil
}

// unregisterReturn backs out a registerReturn when a later step of the
// inspection could not be persisted. The status is set directly since the
// transition table has no reverse edges.
func (s *OutboundService) unregisterReturn(scope Scope, orderID types.SnowflakeID, itemCode string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return
	}
	for _, it := range o.Items {
		if it.ItemCode == itemCode {
			it.ReturnedQty -= qty
			break
		}
	}
	o.Status = OrderDelivered
	for _, it := range o.Items {
		if it.ReturnedQty > 0 {
			o.Status = OrderPartiallyReturned
			break
		}
	}
	s.store.SaveOrder(o)
}

// deliveredItem reports whether the order was delivered and how much of the
// item is still eligible for return.
func (s *OutboundService) deliveredItem(scope Scope, orderID types.SnowflakeID, itemCode string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.find(scope, orderID)
	if err != nil {
		return 0, err
	}
	switch o.Status {
	case OrderDelivered, OrderPartiallyReturned:
	default:
		return 0, &InvalidStateTransitionError{Entity: "order", Ref: o.OrderNo, From: string(o.Status), To: string(OrderPartiallyReturned)}
	}
	for _, it := range o.Items {
		if it.ItemCode == itemCode {
			return it.PickedQty - it.ReturnedQty, nil
		}
	}
	return 0, &NotFoundError{Entity: "order item", Ref: itemCode}
}

func (s *OutboundService) fullyReturned(o *Order) bool {
	for _, it := range o.Items {
		if it.ReturnedQty < it.PickedQty {
			return false
		}
	}
	return true
}

func (s *OutboundService) pickStatus(o *Order) OrderStatus {
	for _, it := range o.Items {
		if it.PickedQty < it.OrderedQty {
			return OrderPartiallyPicked
		}
	}
	return OrderPicked
}

func (s *OutboundService) find(scope Scope, orderID types.SnowflakeID) (*Order, error) {
	o, ok := s.orders[orderID]
	if !ok || o.WhsCode != scope.WhsCode {
		return nil, &NotFoundError{Entity: "order", Ref: orderID.String()}
	}
	return o, nil
}

func (s *OutboundService) findItem(scope Scope, orderID, itemID types.SnowflakeID) (*Order, *OrderItem, error) {
	o, err := s.find(scope, orderID)
	if err != nil {
		return nil, nil, err
	}
	for _, it := range o.Items {
		if it.ID == itemID {
			return o, it, nil
		}
	}
	return nil, nil, &NotFoundError{Entity: "order item", Ref: itemID.String()}
}

func (s *OutboundService) transition(o *Order, to OrderStatus) error {
	if to == o.Status {
		return nil
	}
	if !o.Status.canTransition(to) {
		return &InvalidStateTransitionError{Entity: "order", Ref: o.OrderNo, From: string(o.Status), To: string(to)}
	}
	o.Status = to
	return nil
}
