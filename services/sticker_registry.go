package services

import (
	"fmt"
	"sync"

	"wms-core/controllers/idgen"
	"wms-core/types"

	"github.com/rs/zerolog"
)

// Sticker is one scan code per physical unit, bound to exactly one lot at
// issue time. Codes are globally unique and immutable; quantities live in
// the ledger, never here.
type Sticker struct {
	Code       string
	LotID      types.SnowflakeID
	OutboundID types.SnowflakeID
	Status     StickerStatus
}

type StickerView struct {
	Code       string            `json:"code"`
	LotID      types.SnowflakeID `json:"lot_id"`
	OutboundID types.SnowflakeID `json:"outbound_id,omitempty"`
	Status     StickerStatus     `json:"status"`
}

type StickerRegistry struct {
	mu     sync.Mutex
	byCode map[string]*Sticker
	byLot  map[types.SnowflakeID][]*Sticker
	store  Store
	log    zerolog.Logger
}

func NewStickerRegistry(store Store, log zerolog.Logger) *StickerRegistry {
	return &StickerRegistry{
		byCode: make(map[string]*Sticker),
		byLot:  make(map[types.SnowflakeID][]*Sticker),
		store:  store,
		log:    log.With().Str("component", "stickers").Logger(),
	}
}

// Issue mints count new codes bound to the lot. A snowflake per code keeps
// them unique across restarts without a counter table.
func (r *StickerRegistry) Issue(scope Scope, lotID types.SnowflakeID, count int) ([]string, error) {
	if count <= 0 {
		return nil, validationf("sticker count must be positive, got %d", count)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make([]*Sticker, 0, count)
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s := &Sticker{
			Code:   fmt.Sprintf("SU%d", idgen.GenerateID()),
			LotID:  lotID,
			Status: StickerActive,
		}
		batch = append(batch, s)
		codes = append(codes, s.Code)
	}

	if err := r.store.SaveStickers(batch); err != nil {
		return nil, err
	}
	for _, s := range batch {
		r.byCode[s.Code] = s
		r.byLot[lotID] = append(r.byLot[lotID], s)
	}

	r.log.Debug().Str("lot", lotID.String()).Int("count", count).Int("user", scope.UserID).
		Msg("stickers issued")
	return codes, nil
}

func (r *StickerRegistry) Resolve(code string) (StickerView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byCode[code]
	if !ok {
		return StickerView{}, &NotFoundError{Entity: "sticker", Ref: code}
	}
	return s.view(), nil
}

// MarkEvent transitions a unit's status. Scanning a code twice for the same
// event fails structurally via the transition table.
func (r *StickerRegistry) MarkEvent(scope Scope, code string, event StickerEvent) (StickerView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byCode[code]
	if !ok {
		return StickerView{}, &NotFoundError{Entity: "sticker", Ref: code}
	}

	next, ok := stickerTransitions[s.Status][event]
	if !ok {
		return StickerView{}, &InvalidStateTransitionError{
			Entity: "sticker",
			Ref:    code,
			From:   string(s.Status),
			To:     string(event),
		}
	}

	prev := s.Status
	s.Status = next
	if err := r.store.SaveStickers([]*Sticker{s}); err != nil {
		s.Status = prev
		return StickerView{}, err
	}

	r.log.Debug().Str("code", code).Str("event", string(event)).Int("user", scope.UserID).
		Msg("sticker event")
	return s.view(), nil
}

// claimForOrder binds count unbound active stickers of the lot to an order.
// Called at staging so pickup scans can be checked against the order.
func (r *StickerRegistry) claimForOrder(lotID, orderID types.SnowflakeID, count int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claimed := make([]*Sticker, 0, count)
	for _, s := range r.byLot[lotID] {
		if len(claimed) == count {
			break
		}
		if s.Status == StickerActive && s.OutboundID == 0 {
			claimed = append(claimed, s)
		}
	}
	if len(claimed) < count {
		return nil, validationf("lot %s has only %d free stickers, need %d", lotID, len(claimed), count)
	}

	for _, s := range claimed {
		s.OutboundID = orderID
	}
	if err := r.store.SaveStickers(claimed); err != nil {
		for _, s := range claimed {
			s.OutboundID = 0
		}
		return nil, err
	}

	codes := make([]string, len(claimed))
	for i, s := range claimed {
		codes[i] = s.Code
	}
	return codes, nil
}

// rebindLot follows a physical stock move: up to count unbound active
// stickers switch from the source lot to the destination lot. Returns the
// codes that moved so the caller can rebind them back if it has to unwind.
func (r *StickerRegistry) rebindLot(fromLot, toLot types.SnowflakeID, count int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	moved := make([]*Sticker, 0, count)
	for _, s := range r.byLot[fromLot] {
		if len(moved) == count {
			break
		}
		if s.Status == StickerActive && s.OutboundID == 0 {
			moved = append(moved, s)
		}
	}
	for _, s := range moved {
		r.reindex(s, toLot)
	}
	if len(moved) > 0 {
		if err := r.store.SaveStickers(moved); err != nil {
			for _, s := range moved {
				r.reindex(s, fromLot)
			}
			return nil, err
		}
	}

	codes := make([]string, len(moved))
	for i, s := range moved {
		codes[i] = s.Code
	}
	return codes, nil
}

// rebindCodes points specific stickers at a lot, used when compensated
// stock lands in a lot other than the one it was taken from.
func (r *StickerRegistry) rebindCodes(codes []string, toLot types.SnowflakeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := make([]*Sticker, 0, len(codes))
	for _, code := range codes {
		s, ok := r.byCode[code]
		if !ok || s.LotID == toLot {
			continue
		}
		r.reindex(s, toLot)
		changed = append(changed, s)
	}
	if len(changed) == 0 {
		return nil
	}
	return r.store.SaveStickers(changed)
}

// reindex needs r.mu held.
func (r *StickerRegistry) reindex(s *Sticker, toLot types.SnowflakeID) {
	old := r.byLot[s.LotID]
	for i, cur := range old {
		if cur == s {
			r.byLot[s.LotID] = append(old[:i], old[i+1:]...)
			break
		}
	}
	s.LotID = toLot
	r.byLot[toLot] = append(r.byLot[toLot], s)
}

// releaseOrder unbinds a cancelled order's stickers.
func (r *StickerRegistry) releaseOrder(orderID types.SnowflakeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	released := make([]*Sticker, 0)
	for _, s := range r.byCode {
		if s.OutboundID == orderID && s.Status == StickerActive {
			s.OutboundID = 0
			released = append(released, s)
		}
	}
	if len(released) == 0 {
		return nil
	}
	return r.store.SaveStickers(released)
}

// restoreStatus force-sets a code's status during compensation, where the
// event table has no reverse edge for the step being undone.
func (r *StickerRegistry) restoreStatus(code string, status StickerStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byCode[code]
	if !ok {
		return &NotFoundError{Entity: "sticker", Ref: code}
	}
	prev := s.Status
	s.Status = status
	if err := r.store.SaveStickers([]*Sticker{s}); err != nil {
		s.Status = prev
		return err
	}
	return nil
}

// voidCodes retires still-active codes, e.g. when a receipt is cancelled.
// Codes that already moved past active are left alone.
func (r *StickerRegistry) voidCodes(codes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	voided := make([]*Sticker, 0, len(codes))
	for _, code := range codes {
		s, ok := r.byCode[code]
		if ok && s.Status == StickerActive && s.OutboundID == 0 {
			s.Status = StickerVoid
			voided = append(voided, s)
		}
	}
	if len(voided) == 0 {
		return nil
	}
	return r.store.SaveStickers(voided)
}

// orderCodes lists codes bound to an order with their statuses.
func (r *StickerRegistry) orderCodes(orderID types.SnowflakeID) []StickerView {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]StickerView, 0)
	for _, s := range r.byCode {
		if s.OutboundID == orderID {
			views = append(views, s.view())
		}
	}
	return views
}

// allMarked reports whether every sticker bound to the order reached the
// given status.
func (r *StickerRegistry) allMarked(orderID types.SnowflakeID, status StickerStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	any := false
	for _, s := range r.byCode {
		if s.OutboundID != orderID {
			continue
		}
		any = true
		if s.Status != status {
			return false
		}
	}
	return any
}

// Restore loads persisted stickers at startup.
func (r *StickerRegistry) Restore(stickers []*Sticker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range stickers {
		r.byCode[s.Code] = s
		r.byLot[s.LotID] = append(r.byLot[s.LotID], s)
	}
}

func (s *Sticker) view() StickerView {
	return StickerView{Code: s.Code, LotID: s.LotID, OutboundID: s.OutboundID, Status: s.Status}
}
