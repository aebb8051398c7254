package world

// Storage is an item container with a capacity measured in total units.
// All mutation happens on the control goroutine during action execution;
// decision workers only ever read contents through Contents().
//
// The transfer contract: every operation returns the quantity actually
// moved. Partial moves are normal; items are never silently dropped and
// never duplicated.
type Storage struct {
	contents Stock
	capacity int // <= 0 means unbounded
}

// NewStorage creates an empty container. capacity <= 0 means unbounded.
func NewStorage(capacity int) *Storage {
	return &Storage{capacity: capacity}
}

// Capacity returns the container's capacity (<= 0 means unbounded).
func (s *Storage) Capacity() int {
	return s.capacity
}

// Contents returns a by-value copy of the current stock.
func (s *Storage) Contents() Stock {
	return s.contents
}

// Count returns the held quantity of one kind.
func (s *Storage) Count(kind ItemKind) int {
	return s.contents[kind]
}

// Space returns how many more units fit, or -1 when unbounded.
func (s *Storage) Space() int {
	if s.capacity <= 0 {
		return -1
	}
	space := s.capacity - s.contents.Total()
	if space < 0 {
		space = 0
	}
	return space
}

// Add inserts up to qty units and returns how many were accepted.
func (s *Storage) Add(kind ItemKind, qty int) int {
	if qty <= 0 {
		return 0
	}
	if space := s.Space(); space >= 0 && qty > space {
		qty = space
	}
	s.contents[kind] += qty
	return qty
}

// Remove takes up to qty units and returns how many were actually removed.
func (s *Storage) Remove(kind ItemKind, qty int) int {
	if qty <= 0 {
		return 0
	}
	if have := s.contents[kind]; qty > have {
		qty = have
	}
	s.contents[kind] -= qty
	return qty
}

// TransferTo moves up to qty units of kind into dst and returns the
// quantity actually moved: min(held, requested, destination space).
// Anything removed from the source is guaranteed to land in dst.
func (s *Storage) TransferTo(dst *Storage, kind ItemKind, qty int) int {
	if dst == nil || qty <= 0 {
		return 0
	}
	if have := s.contents[kind]; qty > have {
		qty = have
	}
	if space := dst.Space(); space >= 0 && qty > space {
		qty = space
	}
	if qty <= 0 {
		return 0
	}
	s.contents[kind] -= qty
	dst.contents[kind] += qty
	return qty
}
