package hotkey

import "testing"

func TestResolveNames(t *testing.T) {
	tests := []struct {
		name string
		want Code
	}{
		{"a", 30},
		{"A", 30},
		{"z", 44},
		{"v", 47},
		{"0", 11},
		{"1", 2},
		{"9", 10},
		{"space", keySpace},
		{"period", keyDot},
		{"dot", keyDot},
		{".", keyDot},
		{"Enter", keyEnter},
		{"return", keyEnter},
		{"ESC", keyEsc},
		{"escape", keyEsc},
		{"del", keyDelete},
		{"pageup", keyPageUp},
		{"capslock", keyCapsLock},
		{"print", keySysRq},
		{"sysrq", keySysRq},
		{"-", keyMinus},
		{"minus", keyMinus},
		{"[", keyLeftBrace},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.name)
		if !ok {
			t.Errorf("Resolve(%q) not found", tt.name)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestResolveFunctionKeys(t *testing.T) {
	// F1..F10 are contiguous from 59, but F11 and F12 live in a separate
	// range and must not be computed from F1.
	for n := 1; n <= 10; n++ {
		name := "f" + string(rune('0'+n%10))
		if n == 10 {
			name = "f10"
		}
		got, ok := Resolve(name)
		if !ok || got != keyF1+Code(n-1) {
			t.Errorf("Resolve(%q) = %d, %v; want %d", name, got, ok, keyF1+Code(n-1))
		}
	}

	if got, ok := Resolve("f11"); !ok || got != 87 {
		t.Errorf("Resolve(f11) = %d, %v; want 87", got, ok)
	}
	if got, ok := Resolve("F12"); !ok || got != 88 {
		t.Errorf("Resolve(F12) = %d, %v; want 88", got, ok)
	}
	if got := keyF1 + 10; Code(got) == keyF11 {
		t.Error("test assumption broken: F11 adjacent to F10 in evdev numbering")
	}
}

func TestResolveUnknown(t *testing.T) {
	for _, name := range []string{"", "f0", "f13", "fx", "bogus", "??", "ctrl"} {
		if code, ok := Resolve(name); ok {
			t.Errorf("Resolve(%q) = %d, want not found", name, code)
		}
	}
}
