package denorm

import (
	"fmt"
	"strings"
)

// RefKind tells which dataset a vehicle id points into.
type RefKind int

const (
	// RefNormal is a registered vehicle with an operator.
	RefNormal RefKind = iota
	// RefLegacy is a vehicle from the historical dataset.
	RefLegacy
	// RefBadge is a vehicle known only from its route badge.
	RefBadge
)

const (
	legacyPrefix = "legacy_"
	badgePrefix  = "badge_"
)

func (k RefKind) String() string {
	switch k {
	case RefLegacy:
		return "legacy"
	case RefBadge:
		return "badge"
	default:
		return "normal"
	}
}

// VehicleRef is a parsed vehicle id. Key is the id inside its dataset,
// without any prefix.
type VehicleRef struct {
	Kind RefKind
	Key  string
}

// ParseVehicleRef splits the dataset prefix off a dispatch vehicle id.
func ParseVehicleRef(id string) (VehicleRef, error) {
	id = strings.TrimSpace(id)
	var ref VehicleRef
	switch {
	case strings.HasPrefix(id, legacyPrefix):
		ref = VehicleRef{Kind: RefLegacy, Key: strings.TrimPrefix(id, legacyPrefix)}
	case strings.HasPrefix(id, badgePrefix):
		ref = VehicleRef{Kind: RefBadge, Key: strings.TrimPrefix(id, badgePrefix)}
	default:
		ref = VehicleRef{Kind: RefNormal, Key: id}
	}
	if ref.Key == "" {
		return VehicleRef{}, fmt.Errorf("invalid vehicle id %q", id)
	}
	return ref, nil
}

// String returns the id as stored on dispatch records.
func (r VehicleRef) String() string {
	switch r.Kind {
	case RefLegacy:
		return legacyPrefix + r.Key
	case RefBadge:
		return badgePrefix + r.Key
	default:
		return r.Key
	}
}
