package services

import (
	"sort"
	"sync"
	"time"

	"wms-core/controllers/idgen"
	"wms-core/types"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// LotKey identifies a lot: one product, one batch/DOT combination, at one
// location of one warehouse.
type LotKey struct {
	ItemCode string
	BatchNo  string
	DotCode  string
	WhsCode  string
	Location string
}

func (k LotKey) String() string {
	return k.WhsCode + "/" + k.Location + "/" + k.ItemCode + "/" + k.BatchNo + "/" + k.DotCode
}

// Lot is ledger-owned mutable state. Workflows only ever see LotView copies.
type Lot struct {
	ID       types.SnowflakeID
	Key      LotKey
	Expiry   time.Time
	Quantity int
	Status   LotStatus
	Version  int
}

func (l *Lot) view() LotView {
	return LotView{
		ID:       l.ID,
		ItemCode: l.Key.ItemCode,
		BatchNo:  l.Key.BatchNo,
		DotCode:  l.Key.DotCode,
		WhsCode:  l.Key.WhsCode,
		Location: l.Key.Location,
		Expiry:   l.Expiry,
		Quantity: l.Quantity,
		Version:  l.Version,
	}
}

type LotView struct {
	ID       types.SnowflakeID `json:"lot_id"`
	ItemCode string            `json:"item_code"`
	BatchNo  string            `json:"batch_no"`
	DotCode  string            `json:"dot_code"`
	WhsCode  string            `json:"whs_code"`
	Location string            `json:"location"`
	Expiry   time.Time         `json:"expiry"`
	Quantity int               `json:"quantity"`
	Version  int               `json:"version"`
}

// keyLocks hands out one mutex per lot key. lock() takes every requested
// key in sorted order, so a two-key move can never deadlock against another.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{m: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) lock(keys ...LotKey) func() {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, key.String())
	}
	sort.Strings(names)

	locked := make([]*sync.Mutex, 0, len(names))
	var prev string
	for _, name := range names {
		if name == prev {
			continue
		}
		prev = name

		k.mu.Lock()
		mu, ok := k.m[name]
		if !ok {
			mu = &sync.Mutex{}
			k.m[name] = mu
		}
		k.mu.Unlock()

		mu.Lock()
		locked = append(locked, mu)
	}

	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

// ProductInfo is the slice of master data the ledger needs: unit of measure
// and shelf life for expiry derivation.
type ProductInfo struct {
	ItemCode        string
	Uom             string
	ShelfLifeMonths int
}

type Catalog struct {
	mu       sync.RWMutex
	products map[string]ProductInfo
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]ProductInfo)}
}

func (c *Catalog) Register(p ProductInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ItemCode] = p
}

func (c *Catalog) Get(itemCode string) (ProductInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[itemCode]
	return p, ok
}

// Ledger owns every lot and is the single source of truth for how much of
// what is where. All quantity mutations in the system go through AdjustLot
// and MoveLot; concurrent mutations against the same lot key serialize on a
// per-key hold scoped to the single operation.
type Ledger struct {
	mu       sync.Mutex
	byKey    map[LotKey]*Lot
	byID     map[types.SnowflakeID]*Lot
	locks    *keyLocks
	capacity *CapacityRegistry
	catalog  *Catalog
	store    Store
	log      zerolog.Logger
}

func NewLedger(capacity *CapacityRegistry, catalog *Catalog, store Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		byKey:    make(map[LotKey]*Lot),
		byID:     make(map[types.SnowflakeID]*Lot),
		locks:    newKeyLocks(),
		capacity: capacity,
		catalog:  catalog,
		store:    store,
		log:      log.With().Str("component", "ledger").Logger(),
	}
}

// AdjustLot applies a signed quantity change to the matching lot, creating
// it on a positive delta into an empty slot and retiring it at exactly zero.
func (l *Ledger) AdjustLot(scope Scope, itemCode, batchNo, dotCode, location string, delta int, reason string) (LotView, error) {
	key := LotKey{ItemCode: itemCode, BatchNo: batchNo, DotCode: dotCode, WhsCode: scope.WhsCode, Location: location}
	return l.adjust(scope, key, delta, "adjust", "", reason)
}

func (l *Ledger) adjust(scope Scope, key LotKey, delta int, trans, refNo, reason string) (LotView, error) {
	if err := checkKey(key); err != nil {
		return LotView{}, err
	}
	if delta == 0 {
		return LotView{}, validationf("quantity delta must be non-zero")
	}

	unlock := l.locks.lock(key)
	defer unlock()

	return l.adjustLocked(scope, key, delta, trans, refNo, reason)
}

// adjustLocked needs the key hold already taken.
func (l *Ledger) adjustLocked(scope Scope, key LotKey, delta int, trans, refNo, reason string) (LotView, error) {
	l.mu.Lock()
	lot := l.byKey[key]
	l.mu.Unlock()

	if delta < 0 {
		avail := 0
		if lot != nil {
			avail = lot.Quantity
		}
		if avail < -delta {
			return LotView{}, &InsufficientStockError{
				ItemCode:  key.ItemCode,
				Location:  key.Location,
				Requested: -delta,
				Available: avail,
			}
		}
	} else {
		if err := l.capacity.Reserve(key.Location, delta); err != nil {
			return LotView{}, err
		}
	}

	created := false
	if lot == nil {
		lot = &Lot{
			ID:     types.SnowflakeID(idgen.GenerateID()),
			Key:    key,
			Status: LotActive,
		}
		if p, ok := l.catalog.Get(key.ItemCode); ok {
			if exp, err := dotExpiry(key.DotCode, p.ShelfLifeMonths); err == nil {
				lot.Expiry = exp
			}
		}
		created = true
	}

	lot.Quantity += delta
	lot.Version++
	if lot.Quantity == 0 {
		lot.Status = LotRetired
	}
	if delta < 0 {
		l.capacity.Release(key.Location, -delta)
	}

	l.mu.Lock()
	if created {
		l.byID[lot.ID] = lot
	}
	if lot.Status == LotRetired {
		delete(l.byKey, key)
	} else {
		l.byKey[key] = lot
	}
	l.mu.Unlock()

	mov := &Movement{
		TransType: trans,
		RefNo:     refNo,
		ItemCode:  key.ItemCode,
		BatchNo:   key.BatchNo,
		DotCode:   key.DotCode,
		WhsCode:   key.WhsCode,
		Quantity:  delta,
		Reason:    reason,
		UserID:    scope.UserID,
	}
	if delta > 0 {
		mov.ToLocation = key.Location
	} else {
		mov.FromLocation = key.Location
	}

	if err := l.persistLot(lot, mov); err != nil {
		l.undoAdjust(lot, key, delta)
		return LotView{}, err
	}

	l.log.Debug().Str("lot", key.String()).Int("delta", delta).
		Str("trans", trans).Str("ref", refNo).Int("user", scope.UserID).
		Msg("lot adjusted")

	return lot.view(), nil
}

// undoAdjust rewinds an in-memory adjustment after a failed save.
func (l *Ledger) undoAdjust(lot *Lot, key LotKey, delta int) {
	lot.Quantity -= delta
	lot.Version++
	if delta > 0 {
		l.capacity.Release(key.Location, delta)
	} else {
		// the decrement already released occupancy, take it back
		l.capacity.Reserve(key.Location, -delta)
	}
	if lot.Quantity == 0 {
		lot.Status = LotRetired
	} else {
		lot.Status = LotActive
	}

	l.mu.Lock()
	if lot.Status == LotRetired {
		delete(l.byKey, key)
	} else {
		l.byKey[key] = lot
	}
	l.mu.Unlock()
}

func (l *Ledger) persistLot(lot *Lot, mov *Movement) error {
	if err := l.store.SaveLot(lot); err != nil {
		return err
	}
	return l.store.SaveMovement(mov)
}

// MoveLot moves quantity from a lot to another location (and optionally
// another warehouse) as one all-or-nothing operation. Stock is never left
// half-moved: a capacity rejection at the destination leaves the source
// untouched.
func (l *Ledger) MoveLot(scope Scope, lotID types.SnowflakeID, toWhs, toLocation string, qty int) (LotView, error) {
	return l.move(scope, lotID, toWhs, toLocation, qty, "move", "", "")
}

func (l *Ledger) move(scope Scope, lotID types.SnowflakeID, toWhs, toLocation string, qty int, trans, refNo, reason string) (LotView, error) {
	if qty <= 0 {
		return LotView{}, validationf("move quantity must be positive, got %d", qty)
	}

	l.mu.Lock()
	lot := l.byID[lotID]
	l.mu.Unlock()
	if lot == nil {
		return LotView{}, &NotFoundError{Entity: "lot", Ref: lotID.String()}
	}

	fromKey := lot.Key
	toKey := fromKey
	toKey.Location = toLocation
	if toWhs != "" {
		toKey.WhsCode = toWhs
	}
	if toKey == fromKey {
		return LotView{}, validationf("source and destination are the same location")
	}
	if err := checkKey(toKey); err != nil {
		return LotView{}, err
	}

	unlock := l.locks.lock(fromKey, toKey)
	defer unlock()

	// re-check under the hold: the lot may have been drained and retired
	// between the caller's read and now
	l.mu.Lock()
	current := l.byKey[fromKey]
	l.mu.Unlock()
	if current == nil || current.ID != lotID {
		return LotView{}, &ConcurrencyConflictError{
			Msg: "lot " + lotID.String() + " is no longer active at " + fromKey.Location,
		}
	}
	if current.Quantity < qty {
		return LotView{}, &InsufficientStockError{
			ItemCode:  fromKey.ItemCode,
			Location:  fromKey.Location,
			Requested: qty,
			Available: current.Quantity,
		}
	}

	// destination capacity first: nothing has changed yet if it rejects
	if err := l.capacity.Reserve(toKey.Location, qty); err != nil {
		return LotView{}, err
	}

	// decrement source
	current.Quantity -= qty
	current.Version++
	l.capacity.Release(fromKey.Location, qty)
	if current.Quantity == 0 {
		current.Status = LotRetired
	}

	// increment or create destination
	l.mu.Lock()
	dest := l.byKey[toKey]
	l.mu.Unlock()
	destCreated := false
	if dest == nil {
		dest = &Lot{
			ID:     types.SnowflakeID(idgen.GenerateID()),
			Key:    toKey,
			Expiry: current.Expiry,
			Status: LotActive,
		}
		destCreated = true
	}
	dest.Quantity += qty
	dest.Version++

	l.mu.Lock()
	if current.Status == LotRetired {
		delete(l.byKey, fromKey)
	}
	if destCreated {
		l.byID[dest.ID] = dest
	}
	l.byKey[toKey] = dest
	l.mu.Unlock()

	mov := &Movement{
		TransType:    trans,
		RefNo:        refNo,
		ItemCode:     fromKey.ItemCode,
		BatchNo:      fromKey.BatchNo,
		DotCode:      fromKey.DotCode,
		WhsCode:      toKey.WhsCode,
		FromLocation: fromKey.Location,
		ToLocation:   toKey.Location,
		Quantity:     qty,
		Reason:       reason,
		UserID:       scope.UserID,
	}
	if fromKey.WhsCode != toKey.WhsCode {
		mov.FromWhsCode = fromKey.WhsCode
	}

	err := l.store.SaveLot(current)
	if err == nil {
		err = l.store.SaveLot(dest)
	}
	if err == nil {
		err = l.store.SaveMovement(mov)
	}
	if err != nil {
		// rewind both sides
		dest.Quantity -= qty
		dest.Version++
		l.capacity.Release(toKey.Location, qty)
		current.Quantity += qty
		current.Version++
		current.Status = LotActive
		l.capacity.Reserve(fromKey.Location, qty)

		l.mu.Lock()
		l.byKey[fromKey] = current
		if dest.Quantity == 0 {
			delete(l.byKey, toKey)
		}
		l.mu.Unlock()
		return LotView{}, err
	}

	l.log.Debug().Str("from", fromKey.String()).Str("to", toKey.String()).
		Int("qty", qty).Str("trans", trans).Str("ref", refNo).Msg("lot moved")

	return dest.view(), nil
}

// AvailabilityFilter narrows a QueryAvailable snapshot. Empty fields match
// everything.
type AvailabilityFilter struct {
	BatchNo  string
	DotCode  string
	Location string
}

// QueryAvailable returns snapshot copies of the active lots for a product in
// the scope's warehouse, oldest manufacture code first. Read-only; callers
// must still re-validate inside the mutating call.
func (l *Ledger) QueryAvailable(scope Scope, itemCode string, filter AvailabilityFilter) []LotView {
	l.mu.Lock()
	views := make([]LotView, 0)
	for _, lot := range l.byKey {
		k := lot.Key
		if k.ItemCode != itemCode || k.WhsCode != scope.WhsCode {
			continue
		}
		if filter.BatchNo != "" && k.BatchNo != filter.BatchNo {
			continue
		}
		if filter.DotCode != "" && k.DotCode != filter.DotCode {
			continue
		}
		if filter.Location != "" && k.Location != filter.Location {
			continue
		}
		views = append(views, lot.view())
	}
	l.mu.Unlock()

	slices.SortFunc(views, func(a, b LotView) int {
		if d := dotSortKey(a.DotCode) - dotSortKey(b.DotCode); d != 0 {
			return d
		}
		if a.Location < b.Location {
			return -1
		}
		if a.Location > b.Location {
			return 1
		}
		return 0
	})
	return views
}

// FindLot returns the active lot exactly matching a key.
func (l *Ledger) FindLot(key LotKey) (LotView, error) {
	l.mu.Lock()
	lot := l.byKey[key]
	l.mu.Unlock()
	if lot == nil {
		return LotView{}, &NotFoundError{Entity: "lot", Ref: key.String()}
	}
	return lot.view(), nil
}

// LotByID resolves a lot reference regardless of status.
func (l *Ledger) LotByID(id types.SnowflakeID) (LotView, error) {
	l.mu.Lock()
	lot := l.byID[id]
	l.mu.Unlock()
	if lot == nil {
		return LotView{}, &NotFoundError{Entity: "lot", Ref: id.String()}
	}
	return lot.view(), nil
}

// TotalOnHand sums active lot quantities for a product across a warehouse.
func (l *Ledger) TotalOnHand(whsCode, itemCode string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, lot := range l.byKey {
		if lot.Key.WhsCode == whsCode && lot.Key.ItemCode == itemCode {
			total += lot.Quantity
		}
	}
	return total
}

// Restore loads persisted lots into the arena at startup. Retired lots are
// indexed by ID only.
func (l *Ledger) Restore(lots []*Lot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, lot := range lots {
		l.byID[lot.ID] = lot
		if lot.Status == LotActive && lot.Quantity > 0 {
			l.byKey[lot.Key] = lot
			l.capacity.Reserve(lot.Key.Location, lot.Quantity)
		}
	}
}

func checkKey(key LotKey) error {
	if key.ItemCode == "" {
		return validationf("item code is required")
	}
	if key.WhsCode == "" {
		return validationf("warehouse code is required")
	}
	if key.Location == "" {
		return validationf("location is required")
	}
	if key.DotCode != "" && !dotValid(key.DotCode) {
		return validationf("invalid DOT code %q", key.DotCode)
	}
	return nil
}
