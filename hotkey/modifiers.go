package hotkey

// modifierState tracks the eight physical modifier keys independently.
// Some hardware only reports one side, so both are tracked and only the OR
// of a left/right pair feeds into matching. The listener goroutine is the
// sole reader and writer; the struct never crosses a goroutine boundary.
type modifierState struct {
	ctrlL, ctrlR   bool
	shiftL, shiftR bool
	altL, altR     bool
	superL, superR bool
}

func (m *modifierState) reset() {
	*m = modifierState{}
}

func isModifier(code Code) bool {
	switch code {
	case keyLeftCtrl, keyRightCtrl,
		keyLeftShift, keyRightShift,
		keyLeftAlt, keyRightAlt,
		keyLeftMeta, keyRightMeta:
		return true
	}
	return false
}

func (m *modifierState) update(code Code, pressed bool) {
	switch code {
	case keyLeftCtrl:
		m.ctrlL = pressed
	case keyRightCtrl:
		m.ctrlR = pressed
	case keyLeftShift:
		m.shiftL = pressed
	case keyRightShift:
		m.shiftR = pressed
	case keyLeftAlt:
		m.altL = pressed
	case keyRightAlt:
		m.altR = pressed
	case keyLeftMeta:
		m.superL = pressed
	case keyRightMeta:
		m.superR = pressed
	}
}

// held returns the OR-combined logical modifier families currently down.
func (m *modifierState) held() Mod {
	var mods Mod
	if m.ctrlL || m.ctrlR {
		mods |= ModCtrl
	}
	if m.shiftL || m.shiftR {
		mods |= ModShift
	}
	if m.altL || m.altR {
		mods |= ModAlt
	}
	if m.superL || m.superR {
		mods |= ModSuper
	}
	return mods
}

// matches reports whether the held modifiers equal required exactly.
// Holding an extra, unrequested modifier breaks the match; this keeps
// ctrl+period and ctrl+shift+period distinct and avoids firing while the
// user is chording some other shortcut.
func (m *modifierState) matches(required Mod) bool {
	return m.held() == required
}
