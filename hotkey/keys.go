package hotkey

import (
	"strconv"
	"strings"
)

// Code is a Linux evdev key code, as reported in input_event.code.
type Code uint16

// Key codes from linux/input-event-codes.h. Only the keys the resolver and
// the modifier tracker care about are named here.
const (
	keyEsc        Code = 1
	key1          Code = 2
	key0          Code = 11
	keyMinus      Code = 12
	keyEqual      Code = 13
	keyBackspace  Code = 14
	keyTab        Code = 15
	keyLeftBrace  Code = 26
	keyRightBrace Code = 27
	keyEnter      Code = 28
	keyLeftCtrl   Code = 29
	keyA          Code = 30
	keySemicolon  Code = 39
	keyApostrophe Code = 40
	keyGrave      Code = 41
	keyLeftShift  Code = 42
	keyBackslash  Code = 43
	keyV          Code = 47
	keyComma      Code = 51
	keyDot        Code = 52
	keySlash      Code = 53
	keyRightShift Code = 54
	keyLeftAlt    Code = 56
	keySpace      Code = 57
	keyCapsLock   Code = 58
	keyF1         Code = 59
	keyF11        Code = 87
	keyF12        Code = 88
	keyRightCtrl  Code = 97
	keySysRq      Code = 99
	keyRightAlt   Code = 100
	keyHome       Code = 102
	keyUp         Code = 103
	keyPageUp     Code = 104
	keyLeft       Code = 105
	keyRight      Code = 106
	keyEnd        Code = 107
	keyDown       Code = 108
	keyPageDown   Code = 109
	keyInsert     Code = 110
	keyDelete     Code = 111
	keyPause      Code = 119
	keyLeftMeta   Code = 125
	keyRightMeta  Code = 126
)

// Letter codes indexed by 'a'..'z'. The evdev codes follow the physical
// QWERTY rows, so they are not alphabetically contiguous.
var letterCodes = [26]Code{
	30, 48, 46, 32, 18, 33, 34, 35, 23, 36, 37, 38, 50,
	49, 24, 25, 16, 19, 31, 20, 22, 47, 17, 45, 21, 44,
}

var namedKeys = map[string]Code{
	"space":      keySpace,
	"period":     keyDot,
	"dot":        keyDot,
	".":          keyDot,
	"comma":      keyComma,
	",":          keyComma,
	"slash":      keySlash,
	"/":          keySlash,
	"backslash":  keyBackslash,
	"\\":         keyBackslash,
	"semicolon":  keySemicolon,
	";":          keySemicolon,
	"apostrophe": keyApostrophe,
	"'":          keyApostrophe,
	"grave":      keyGrave,
	"`":          keyGrave,
	"minus":      keyMinus,
	"-":          keyMinus,
	"equal":      keyEqual,
	"=":          keyEqual,
	"leftbrace":  keyLeftBrace,
	"[":          keyLeftBrace,
	"rightbrace": keyRightBrace,
	"]":          keyRightBrace,
	"enter":      keyEnter,
	"return":     keyEnter,
	"tab":        keyTab,
	"backspace":  keyBackspace,
	"escape":     keyEsc,
	"esc":        keyEsc,
	"delete":     keyDelete,
	"del":        keyDelete,
	"insert":     keyInsert,
	"ins":        keyInsert,
	"home":       keyHome,
	"end":        keyEnd,
	"pageup":     keyPageUp,
	"pagedown":   keyPageDown,
	"up":         keyUp,
	"down":       keyDown,
	"left":       keyLeft,
	"right":      keyRight,
	"capslock":   keyCapsLock,
	"print":      keySysRq,
	"sysrq":      keySysRq,
	"pause":      keyPause,
}

// Resolve maps a human-readable key name ("period", "f5", "a") to its evdev
// key code. Names are case-insensitive. The second return value is false for
// names the resolver does not recognize.
func Resolve(name string) (Code, bool) {
	lower := strings.ToLower(name)

	if len(lower) == 1 {
		c := lower[0]
		switch {
		case c >= 'a' && c <= 'z':
			return letterCodes[c-'a'], true
		case c == '0':
			return key0, true
		case c >= '1' && c <= '9':
			return key1 + Code(c-'1'), true
		}
	}

	if code, ok := namedKeys[lower]; ok {
		return code, true
	}

	// F1..F10 are contiguous in the evdev numbering, but F11 and F12 are
	// not adjacent to F10, so they cannot be computed from keyF1.
	if len(lower) >= 2 && lower[0] == 'f' {
		n, err := strconv.Atoi(lower[1:])
		if err != nil {
			return 0, false
		}
		switch {
		case n >= 1 && n <= 10:
			return keyF1 + Code(n-1), true
		case n == 11:
			return keyF11, true
		case n == 12:
			return keyF12, true
		}
	}

	return 0, false
}
