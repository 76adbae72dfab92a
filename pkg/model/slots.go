package model

import "fmt"

// Slot is one discrete evening time unit. The domain is fixed: matches are
// played in the evening, and "00:00" means just before midnight, so it sorts
// after "23:00".
type Slot string

const (
	Slot1800 Slot = "18:00"
	Slot1900 Slot = "19:00"
	Slot2000 Slot = "20:00"
	Slot2100 Slot = "21:00"
	Slot2200 Slot = "22:00"
	Slot2300 Slot = "23:00"
	Slot0000 Slot = "00:00"
)

// SlotDomain is the full slot domain in play order.
var SlotDomain = []Slot{
	Slot1800,
	Slot1900,
	Slot2000,
	Slot2100,
	Slot2200,
	Slot2300,
	Slot0000,
}

var slotOrder = func() map[Slot]int {
	m := make(map[Slot]int, len(SlotDomain))
	for i, s := range SlotDomain {
		m[s] = i
	}
	return m
}()

// SlotIndex returns the slot's position in play order, or -1 for an unknown code.
func SlotIndex(s Slot) int {
	if i, ok := slotOrder[s]; ok {
		return i
	}
	return -1
}

func ValidSlot(s Slot) bool {
	_, ok := slotOrder[s]
	return ok
}

// IsPrimeTime reports whether the slot falls in the 18:00-22:00 range the
// league prefers when several candidate times exist.
func IsPrimeTime(s Slot) bool {
	i := SlotIndex(s)
	return i >= 0 && i <= slotOrder[Slot2200]
}

// DaySlots is a participant's availability for one day, always stored as an
// explicit, deduplicated set sorted in play order. The empty set means
// unavailable all day.
type DaySlots []Slot

func (d DaySlots) Contains(s Slot) bool {
	for _, slot := range d {
		if slot == s {
			return true
		}
	}
	return false
}

func (d DaySlots) Empty() bool {
	return len(d) == 0
}

// Intersect returns the slots present in both sets, in play order.
func (d DaySlots) Intersect(other DaySlots) DaySlots {
	var result DaySlots
	for _, s := range d {
		if other.Contains(s) {
			result = append(result, s)
		}
	}
	return result
}

// AllSlots returns the full 7-slot set.
func AllSlots() DaySlots {
	out := make(DaySlots, len(SlotDomain))
	copy(out, SlotDomain)
	return out
}

// DayMode is the day-level shorthand accepted at the input boundary.
type DayMode string

const (
	DayModeAllDay      DayMode = "all_day"
	DayModeUnavailable DayMode = "unavailable"
	DayModePartial     DayMode = "partial"
)

// DayInput is the tagged form a participant submits for one day. It exists
// only at the boundary; Normalize collapses it to an explicit DaySlots before
// anything is stored.
type DayInput struct {
	Mode  DayMode `json:"mode" validate:"required,day_mode"`
	Slots []Slot  `json:"slots,omitempty" validate:"omitempty,max=7,dive,slot_code"`
}

// Normalize resolves the shorthand into an explicit slot set. Partial input is
// deduplicated and sorted in play order; slots outside the domain are an error.
func (in DayInput) Normalize() (DaySlots, error) {
	switch in.Mode {
	case DayModeAllDay:
		return AllSlots(), nil
	case DayModeUnavailable:
		return DaySlots{}, nil
	case DayModePartial:
		seen := make(map[Slot]bool, len(in.Slots))
		for _, s := range in.Slots {
			if !ValidSlot(s) {
				return nil, fmt.Errorf("unknown slot code: %q", s)
			}
			seen[s] = true
		}
		var out DaySlots
		for _, s := range SlotDomain {
			if seen[s] {
				out = append(out, s)
			}
		}
		if out == nil {
			out = DaySlots{}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown day mode: %q", in.Mode)
	}
}
