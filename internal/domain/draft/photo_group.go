package draft

import (
	"fmt"
	"strconv"
)

// allItemsWire is the index the upload endpoint expects for the
// "all items together" shot. It never leaks into domain logic; use
// PhotoGroup instead.
const allItemsWire = -1

// PhotoGroup identifies which staged photo set a file belongs to: one gold
// item by position, or the single "all items together" shot. The tagged
// form removes the ambiguity between "no index" and "the special group".
type PhotoGroup struct {
	all      bool
	position int
}

func ItemGroup(position int) PhotoGroup { return PhotoGroup{position: position} }

func AllItemsGroup() PhotoGroup { return PhotoGroup{all: true} }

func (g PhotoGroup) IsAll() bool { return g.all }

// Position returns the gold-item position and true, or (0, false) for the
// all-items group.
func (g PhotoGroup) Position() (int, bool) {
	if g.all {
		return 0, false
	}
	return g.position, true
}

// WireIndex encodes the group as the upload endpoint's goldItemIndex field.
func (g PhotoGroup) WireIndex() int {
	if g.all {
		return allItemsWire
	}
	return g.position
}

// GroupFromWire decodes a stored or wire goldItemIndex. Any negative value
// maps to the all-items group.
func GroupFromWire(n int) PhotoGroup {
	if n < 0 {
		return AllItemsGroup()
	}
	return ItemGroup(n)
}

// ParseGroup parses a path segment: a non-negative item position, or the
// literal "all".
func ParseGroup(s string) (PhotoGroup, error) {
	if s == "all" {
		return AllItemsGroup(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return PhotoGroup{}, fmt.Errorf("invalid photo group %q", s)
	}
	return ItemGroup(n), nil
}

func (g PhotoGroup) String() string {
	if g.all {
		return "all"
	}
	return strconv.Itoa(g.position)
}
