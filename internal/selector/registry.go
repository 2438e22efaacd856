package selector

import (
	"errors"
	"fmt"
	"sort"
)

// Registry names. Configuration files reference strategies by these strings.
const (
	NameBBIKDJ    = "BBIKDJSelector"
	NameShortLong = "BBIShortLongSelector"
	NameBreakout  = "BreakoutVolumeKDJSelector"
	NamePeak      = "PeakKDJSelector"
)

// ErrUnknownStrategy is wrapped by New when the name has no registry entry.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Constructor builds a strategy from a raw parameter mapping.
type Constructor func(params map[string]any) (Strategy, error)

// Adding a strategy means adding a variant type and one entry here.
var registry = map[string]Constructor{
	NameBBIKDJ:    NewBBIKDJ,
	NameShortLong: NewShortLong,
	NameBreakout:  NewBreakout,
	NamePeak:      NewPeak,
}

// New constructs the named strategy. An unrecognized name is a
// configuration error identifying the offender.
func New(name string, params map[string]any) (Strategy, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return ctor(params)
}

// Names returns the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
