package relic

import "fmt"

const (
	// SlotsPerVessel is fixed: three simple slots then three dual slots.
	SlotsPerVessel = 6
	simpleSlots    = 3
)

// Slot is one position of a vessel. Color may be Any.
type Slot struct {
	Color Color
	Kind  Kind
}

// Vessel is a six-slot container belonging to a nightfarer.
type Vessel struct {
	ID    string
	Name  string
	Slots [SlotsPerVessel]Slot
}

// NewVessel builds a vessel from its six slot colors. Slots 1-3 take simple
// relics and slots 4-6 take dual relics.
func NewVessel(id, name string, colors []Color) (Vessel, error) {
	v := Vessel{ID: id, Name: name}
	if len(colors) != SlotsPerVessel {
		return v, fmt.Errorf("vessel %s: %d slots, want %d", id, len(colors), SlotsPerVessel)
	}
	for i, c := range colors {
		if c < Yellow || c > Any {
			return v, fmt.Errorf("vessel %s slot %d: %w", id, i+1, ErrInvalidColor)
		}
		kind := Simple
		if i >= simpleSlots {
			kind = Dual
		}
		v.Slots[i] = Slot{Color: c, Kind: kind}
	}
	return v, nil
}

// Compatible reports whether r may sit in slot. Kinds must match; colors
// must match unless the slot is a wildcard.
func Compatible(slot Slot, r Relic) bool {
	if slot.Kind != r.Kind {
		return false
	}
	if slot.Color == Any {
		return true
	}
	return slot.Color == r.Color
}
