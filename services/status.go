package services

// Closed status enumerations with explicit transition tables. Every workflow
// mutation validates its transition here; an illegal move surfaces as
// InvalidStateTransitionError instead of a silently written status string.

type ReceiptStatus string

const (
	ReceiptPending           ReceiptStatus = "pending"
	ReceiptPartiallyReceived ReceiptStatus = "partially_received"
	ReceiptReceived          ReceiptStatus = "received"
	ReceiptPartiallyPutaway  ReceiptStatus = "partially_putaway"
	ReceiptCompleted         ReceiptStatus = "completed"
	ReceiptCancelled         ReceiptStatus = "cancelled"
)

var receiptTransitions = map[ReceiptStatus][]ReceiptStatus{
	ReceiptPending:           {ReceiptPartiallyReceived, ReceiptReceived, ReceiptCancelled},
	ReceiptPartiallyReceived: {ReceiptPartiallyReceived, ReceiptReceived, ReceiptPartiallyPutaway, ReceiptCancelled},
	ReceiptReceived:          {ReceiptPartiallyPutaway, ReceiptCompleted, ReceiptCancelled},
	ReceiptPartiallyPutaway:  {ReceiptPartiallyPutaway, ReceiptCompleted, ReceiptCancelled},
	ReceiptCompleted:         {},
	ReceiptCancelled:         {},
}

func (s ReceiptStatus) canTransition(to ReceiptStatus) bool {
	for _, t := range receiptTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

func (s ReceiptStatus) terminal() bool {
	return s == ReceiptCompleted || s == ReceiptCancelled
}

type OrderStatus string

const (
	OrderNew               OrderStatus = "new"
	OrderPendingPick       OrderStatus = "pending_pick"
	OrderPartiallyPicked   OrderStatus = "partially_picked"
	OrderPicked            OrderStatus = "picked"
	OrderStaged            OrderStatus = "staged"
	OrderAssigned          OrderStatus = "assigned"
	OrderShipped           OrderStatus = "shipped"
	OrderOutForDelivery    OrderStatus = "out_for_delivery"
	OrderDelivered         OrderStatus = "delivered"
	OrderPartiallyReturned OrderStatus = "partially_returned"
	OrderReturned          OrderStatus = "returned"
	OrderCancelled         OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderNew:               {OrderPendingPick, OrderCancelled},
	OrderPendingPick:       {OrderPartiallyPicked, OrderPicked, OrderCancelled},
	OrderPartiallyPicked:   {OrderPartiallyPicked, OrderPicked, OrderCancelled},
	OrderPicked:            {OrderStaged, OrderCancelled},
	OrderStaged:            {OrderAssigned, OrderCancelled},
	OrderAssigned:          {OrderAssigned, OrderShipped},
	OrderShipped:           {OrderOutForDelivery},
	OrderOutForDelivery:    {OrderDelivered},
	OrderDelivered:         {OrderPartiallyReturned, OrderReturned},
	OrderPartiallyReturned: {OrderPartiallyReturned, OrderReturned},
	OrderReturned:          {},
	OrderCancelled:         {},
}

func (s OrderStatus) canTransition(to OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// cancellable means no stock has physically left the warehouse yet.
func (s OrderStatus) cancellable() bool {
	switch s {
	case OrderNew, OrderPendingPick, OrderPartiallyPicked, OrderPicked, OrderStaged:
		return true
	}
	return false
}

type ReturnStatus string

const (
	ReturnOpen      ReturnStatus = "open"
	ReturnCompleted ReturnStatus = "completed"
)

type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

type StickerStatus string

const (
	StickerActive    StickerStatus = "active"
	StickerPicked    StickerStatus = "picked"
	StickerDelivered StickerStatus = "delivered"
	StickerReturned  StickerStatus = "returned"
	StickerVoid      StickerStatus = "void"
)

type StickerEvent string

const (
	EventPicked    StickerEvent = "picked"
	EventDelivered StickerEvent = "delivered"
	EventReturned  StickerEvent = "returned"
)

var stickerTransitions = map[StickerStatus]map[StickerEvent]StickerStatus{
	StickerActive:    {EventPicked: StickerPicked},
	StickerPicked:    {EventDelivered: StickerDelivered},
	StickerDelivered: {EventReturned: StickerReturned},
}

type LotStatus string

const (
	LotActive  LotStatus = "active"
	LotRetired LotStatus = "retired"
)
