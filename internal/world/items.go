package world

// ItemKind enumerates the stackable item types containers can hold.
// The catalog is deliberately small; item data definitions beyond kind
// and quantity are constructed by external data layers.
type ItemKind uint8

const (
	ItemGrain    ItemKind = iota // Food staple
	ItemFish                     // Food
	ItemTimber                   // Construction
	ItemHerbs                    // Medicine ingredients
	ItemMedicine                 // Healing
	ItemTools                    // Work speed
)

// NumItemKinds is the total number of item kinds.
const NumItemKinds = 6

// ItemName returns a human-readable item name.
func ItemName(k ItemKind) string {
	switch k {
	case ItemGrain:
		return "grain"
	case ItemFish:
		return "fish"
	case ItemTimber:
		return "timber"
	case ItemHerbs:
		return "herbs"
	case ItemMedicine:
		return "medicine"
	case ItemTools:
		return "tools"
	default:
		return "unknown"
	}
}

// Edible reports whether the kind satisfies hunger when consumed.
func Edible(k ItemKind) bool {
	return k == ItemGrain || k == ItemFish
}

// Stock is a fixed-size array holding quantities of each item kind.
// Inline in structs, zero heap allocation, copied by value.
type Stock [NumItemKinds]int

// IsEmpty returns true if all quantities are zero.
func (s Stock) IsEmpty() bool {
	for _, qty := range s {
		if qty != 0 {
			return false
		}
	}
	return true
}

// Total returns the summed quantity across all kinds.
func (s Stock) Total() int {
	total := 0
	for _, qty := range s {
		total += qty
	}
	return total
}

// Clear zeroes all quantities.
func (s *Stock) Clear() {
	*s = Stock{}
}
