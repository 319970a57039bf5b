package services

import (
	"sync"

	"github.com/rs/zerolog"
)

type LocationInfo struct {
	Code     string
	WhsCode  string
	Type     string // bin, dock, staging
	Capacity int    // 0 = uncapped
	Blocked  bool
}

type locationState struct {
	LocationInfo
	Occupied int
}

// CapacityRegistry tracks per-location occupancy against declared maximums.
// Pure bookkeeping: it knows nothing about lots or workflows.
type CapacityRegistry struct {
	mu        sync.Mutex
	locations map[string]*locationState
	log       zerolog.Logger
}

func NewCapacityRegistry(log zerolog.Logger) *CapacityRegistry {
	return &CapacityRegistry{
		locations: make(map[string]*locationState),
		log:       log.With().Str("component", "capacity").Logger(),
	}
}

// Register declares a location. Re-registering updates capacity and blocked
// flag but keeps the occupied counter.
func (c *CapacityRegistry) Register(info LocationInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.locations[info.Code]; ok {
		st.LocationInfo = info
		return
	}
	c.locations[info.Code] = &locationState{LocationInfo: info}
}

// Reserve claims units at a location. Blocked locations and unknown
// locations reject any increase.
func (c *CapacityRegistry) Reserve(code string, units int) error {
	if units <= 0 {
		return validationf("reserve units must be positive, got %d", units)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.locations[code]
	if !ok {
		return &NotFoundError{Entity: "location", Ref: code}
	}
	if st.Blocked {
		return &CapacityExceededError{Location: code, Requested: units, Blocked: true}
	}
	if st.Capacity > 0 && st.Occupied+units > st.Capacity {
		return &CapacityExceededError{Location: code, Requested: units, Free: st.Capacity - st.Occupied}
	}
	st.Occupied += units
	return nil
}

func (c *CapacityRegistry) Release(code string, units int) error {
	if units <= 0 {
		return validationf("release units must be positive, got %d", units)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.locations[code]
	if !ok {
		return &NotFoundError{Entity: "location", Ref: code}
	}
	if units > st.Occupied {
		// releasing more than occupied means the caller's bookkeeping broke
		c.log.Warn().Str("location", code).Int("units", units).Int("occupied", st.Occupied).
			Msg("release exceeds occupancy, clamping to zero")
		st.Occupied = 0
		return nil
	}
	st.Occupied -= units
	return nil
}

func (c *CapacityRegistry) Occupied(code string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.locations[code]
	if !ok {
		return 0, &NotFoundError{Entity: "location", Ref: code}
	}
	return st.Occupied, nil
}

func (c *CapacityRegistry) SetBlocked(code string, blocked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.locations[code]
	if !ok {
		return &NotFoundError{Entity: "location", Ref: code}
	}
	st.Blocked = blocked
	return nil
}

func (c *CapacityRegistry) Exists(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.locations[code]
	return ok
}
