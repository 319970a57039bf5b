package services

import (
	"sync"

	"wms-core/controllers/idgen"
	"wms-core/types"

	"github.com/rs/zerolog"
)

// Transfer moves stock between locations, within one warehouse or across
// two. It executes as a unit: if any line fails, the lines already moved
// are moved back.
type Transfer struct {
	ID         types.SnowflakeID
	TransferNo string
	WhsCode    string
	ToWhsCode  string
	Status     TransferStatus
	Lines      []*TransferLine
}

type TransferLine struct {
	ID         types.SnowflakeID
	LotID      types.SnowflakeID
	ItemCode   string
	Quantity   int
	ToLocation string

	// filled in at execution
	FromLocation string
	DestLotID    types.SnowflakeID
}

type TransferService struct {
	mu        sync.Mutex
	transfers map[types.SnowflakeID]*Transfer
	ledger    *Ledger
	stickers  *StickerRegistry
	store     Store
	numbers   *numberSource
	log       zerolog.Logger
}

func NewTransferService(ledger *Ledger, stickers *StickerRegistry, store Store, log zerolog.Logger) *TransferService {
	return &TransferService{
		transfers: make(map[types.SnowflakeID]*Transfer),
		ledger:    ledger,
		stickers:  stickers,
		store:     store,
		numbers:   newNumberSource(),
		log:       log.With().Str("component", "transfer").Logger(),
	}
}

type CreateTransferLine struct {
	LotID      types.SnowflakeID `json:"lot_id" validate:"required"`
	Quantity   int               `json:"quantity" validate:"required,min=1"`
	ToLocation string            `json:"to_location" validate:"required"`
}

type CreateTransferRequest struct {
	ToWhsCode string               `json:"to_whs_code"`
	Lines     []CreateTransferLine `json:"lines" validate:"required,dive"`
}

// CreateTransfer registers the intent. Availability is checked at
// execution time, not here; only existence and ownership are checked now.
func (s *TransferService) CreateTransfer(scope Scope, req CreateTransferRequest) (*Transfer, error) {
	if len(req.Lines) == 0 {
		return nil, validationf("transfer needs at least one line")
	}

	t := &Transfer{
		ID:         types.SnowflakeID(idgen.GenerateID()),
		TransferNo: s.numbers.Next("TR"),
		WhsCode:    scope.WhsCode,
		ToWhsCode:  req.ToWhsCode,
		Status:     TransferPending,
	}
	for _, ln := range req.Lines {
		if ln.Quantity <= 0 {
			return nil, validationf("transfer quantity must be positive, got %d", ln.Quantity)
		}
		if ln.ToLocation == "" {
			return nil, validationf("transfer line needs a destination location")
		}
		lot, err := s.ledger.LotByID(ln.LotID)
		if err != nil {
			return nil, err
		}
		if lot.WhsCode != scope.WhsCode {
			return nil, &NotFoundError{Entity: "lot", Ref: ln.LotID.String()}
		}
		t.Lines = append(t.Lines, &TransferLine{
			ID:         types.SnowflakeID(idgen.GenerateID()),
			LotID:      ln.LotID,
			ItemCode:   lot.ItemCode,
			Quantity:   ln.Quantity,
			ToLocation: ln.ToLocation,
		})
	}

	if err := s.store.SaveTransfer(t); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.transfers[t.ID] = t
	s.mu.Unlock()

	s.log.Info().Str("transfer", t.TransferNo).Int("lines", len(t.Lines)).
		Int("user", scope.UserID).Msg("transfer created")
	return t, nil
}

// ExecuteTransfer moves every line. A failure on line N moves lines 1..N-1
// back to their source before returning the error.
func (s *TransferService) ExecuteTransfer(scope Scope, transferID types.SnowflakeID) (*Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.find(scope, transferID)
	if err != nil {
		return nil, err
	}
	if t.Status != TransferPending {
		return nil, &InvalidStateTransitionError{Entity: "transfer", Ref: t.TransferNo, From: string(t.Status), To: string(TransferCompleted)}
	}

	type moved struct {
		line     *TransferLine
		stickers []string
	}
	done := make([]moved, 0, len(t.Lines))
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			ln := done[i].line
			s.ledger.move(scope, ln.DestLotID, t.WhsCode, ln.FromLocation, ln.Quantity,
				"compensate", t.TransferNo, "transfer rollback")
			s.stickers.rebindCodes(done[i].stickers, ln.LotID)
			ln.DestLotID = 0
			ln.FromLocation = ""
		}
	}

	for _, ln := range t.Lines {
		lot, err := s.ledger.LotByID(ln.LotID)
		if err != nil {
			rollback()
			return nil, err
		}
		dest, err := s.ledger.move(scope, ln.LotID, t.ToWhsCode, ln.ToLocation, ln.Quantity,
			"transfer", t.TransferNo, "stock transfer")
		if err != nil {
			rollback()
			return nil, err
		}
		codes, err := s.stickers.rebindLot(ln.LotID, dest.ID, ln.Quantity)
		if err != nil {
			s.ledger.move(scope, dest.ID, t.WhsCode, lot.Location, ln.Quantity,
				"compensate", t.TransferNo, "transfer rollback")
			rollback()
			return nil, err
		}
		ln.FromLocation = lot.Location
		ln.DestLotID = dest.ID
		done = append(done, moved{line: ln, stickers: codes})
	}

	t.Status = TransferCompleted
	if err := s.store.SaveTransfer(t); err != nil {
		rollback()
		t.Status = TransferPending
		return nil, err
	}

	s.log.Info().Str("transfer", t.TransferNo).Msg("transfer executed")
	return t, nil
}

func (s *TransferService) CancelTransfer(scope Scope, transferID types.SnowflakeID) (*Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.find(scope, transferID)
	if err != nil {
		return nil, err
	}
	if t.Status != TransferPending {
		return nil, &InvalidStateTransitionError{Entity: "transfer", Ref: t.TransferNo, From: string(t.Status), To: string(TransferCancelled)}
	}

	t.Status = TransferCancelled
	if err := s.store.SaveTransfer(t); err != nil {
		t.Status = TransferPending
		return nil, err
	}

	s.log.Warn().Str("transfer", t.TransferNo).Int("user", scope.UserID).Msg("transfer cancelled")
	return t, nil
}

func (s *TransferService) GetTransfer(scope Scope, transferID types.SnowflakeID) (*Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(scope, transferID)
}

func (s *TransferService) ListTransfers(scope Scope) []*Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Transfer, 0, len(s.transfers))
	for _, t := range s.transfers {
		if t.WhsCode == scope.WhsCode {
			out = append(out, t)
		}
	}
	return out
}

// Restore loads persisted transfers at startup.
func (s *TransferService) Restore(transfers []*Transfer, lastNo string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range transfers {
		s.transfers[t.ID] = t
	}
	s.numbers.Restore("TR", lastNo)
}

func (s *TransferService) find(scope Scope, transferID types.SnowflakeID) (*Transfer, error) {
	t, ok := s.transfers[transferID]
	if !ok || t.WhsCode != scope.WhsCode {
		return nil, &NotFoundError{Entity: "transfer", Ref: transferID.String()}
	}
	return t, nil
}
