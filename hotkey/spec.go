package hotkey

import (
	"fmt"
	"strings"
)

// Mod is a bitmask of required modifier families. Left and right variants
// are not distinguished here; live tracking keeps them apart and ORs the
// pair when matching.
type Mod uint8

const (
	ModCtrl Mod = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

// Spec is a parsed hotkey: one trigger key plus the modifiers that must be
// held, and no others, for the combination to match.
type Spec struct {
	Key  Code
	Mods Mod
}

// ParseSpec parses a combo string such as "ctrl+period" or "ctrl+shift+space".
// Tokens are separated by '+' and trimmed; the last token is the trigger key,
// every preceding token must name a modifier family.
func ParseSpec(combo string) (Spec, error) {
	var parts []string
	for _, p := range strings.Split(combo, "+") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) == 0 {
		return Spec{}, fmt.Errorf("empty hotkey combo %q", combo)
	}

	var mods Mod
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "ctrl", "control":
			mods |= ModCtrl
		case "shift":
			mods |= ModShift
		case "alt":
			mods |= ModAlt
		case "super", "meta", "mod4", "super_l", "super_r":
			mods |= ModSuper
		default:
			return Spec{}, fmt.Errorf("unknown modifier %q in %q", p, combo)
		}
	}

	keyName := parts[len(parts)-1]
	code, ok := Resolve(keyName)
	if !ok {
		return Spec{}, fmt.Errorf("unknown key %q in %q", keyName, combo)
	}

	return Spec{Key: code, Mods: mods}, nil
}
