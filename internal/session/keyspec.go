// Key-specification parsing: turns the string grammar terminal_press_key
// accepts into raw PTY bytes, generalizing the teacher's tea.KeyMsg-based
// internal/app/keybytes.go switch into a string-grammar parser since the
// session layer has no Bubbletea key messages to dispatch on.
package session

import (
	"fmt"
	"strings"

	"github.com/patrick-goecommerce/terminal-mcp/internal/apperr"
)

// modifier bitset, ordering is insignificant — xterm encoding only cares
// about which modifiers are present, not their order in the spec string.
type modifier int

const (
	modCtrl modifier = 1 << iota
	modShift
	modAlt
	modMeta
)

var namedKeys = map[string][]byte{
	"enter":     {'\r'},
	"tab":       {'\t'},
	"backspace": {0x7f},
	"escape":    {0x1b},
	"esc":       {0x1b},
	"space":     {' '},
	"up":        {0x1b, '[', 'A'},
	"down":      {0x1b, '[', 'B'},
	"right":     {0x1b, '[', 'C'},
	"left":      {0x1b, '[', 'D'},
	"home":      {0x1b, '[', 'H'},
	"end":       {0x1b, '[', 'F'},
	"pageup":    {0x1b, '[', '5', '~'},
	"pagedown":  {0x1b, '[', '6', '~'},
	"insert":    {0x1b, '[', '2', '~'},
	"delete":    {0x1b, '[', '3', '~'},
}

// ctrlByte maps a-z to their Ctrl-modified control byte (Ctrl+A=0x01 … Ctrl+Z=0x1a).
func ctrlByte(r rune) (byte, bool) {
	lr := r
	if lr >= 'A' && lr <= 'Z' {
		lr = lr - 'A' + 'a'
	}
	if lr >= 'a' && lr <= 'z' {
		return byte(lr - 'a' + 1), true
	}
	switch lr {
	case '[':
		return 0x1b, true
	case '\\':
		return 0x1c, true
	case ']':
		return 0x1d, true
	case '^':
		return 0x1e, true
	case '_':
		return 0x1f, true
	}
	return 0, false
}

func functionKeyBytes(n int) ([]byte, bool) {
	// xterm convention: F1-F4 use SS3, F5-F12 use CSI ~ codes, F13-F24
	// repeat the F1-F12 codes with the Shift modifier parameter (;2).
	switch {
	case n >= 1 && n <= 4:
		final := byte('P' + (n - 1))
		return []byte{0x1b, 'O', final}, true
	case n >= 5 && n <= 12:
		codes := map[int]string{5: "15", 6: "17", 7: "18", 8: "19", 9: "20", 10: "21", 11: "23", 12: "24"}
		return []byte("\x1b[" + codes[n] + "~"), true
	case n >= 13 && n <= 24:
		base, ok := functionKeyBytes(n - 12)
		if !ok {
			return nil, false
		}
		return appendShiftParam(base), true
	}
	return nil, false
}

// appendShiftParam rewrites an unmodified function-key sequence to carry
// the xterm ";2" (Shift) modifier parameter, for F13-F24.
func appendShiftParam(base []byte) []byte {
	s := string(base)
	if strings.HasPrefix(s, "\x1bO") && len(s) == 3 {
		return []byte(fmt.Sprintf("\x1b[1;2%c", s[2]))
	}
	if strings.HasSuffix(s, "~") {
		return []byte(s[:len(s)-1] + ";2~")
	}
	return base
}

// ParseKeySpec parses a key specification per spec.md §6's grammar:
//
//	key := [mod ("+"|"-")]* name
//
// mod in {Ctrl, Shift, Alt, Meta} (case-insensitive), name a named key
// (case-insensitive) or a single printable character, and returns the
// xterm-convention byte encoding for that keypress.
func ParseKeySpec(spec string) ([]byte, error) {
	if spec == "" {
		return nil, apperr.New(apperr.InvalidArgument, "empty key spec")
	}

	parts := splitKeySpec(spec)
	if len(parts) == 0 {
		return nil, apperr.New(apperr.InvalidArgument, "empty key spec")
	}
	name := parts[len(parts)-1]
	var mods modifier
	for _, p := range parts[:len(parts)-1] {
		m, ok := parseModifier(p)
		if !ok {
			return nil, apperr.New(apperr.InvalidArgument, fmt.Sprintf("unknown modifier %q in key spec %q", p, spec))
		}
		mods |= m
	}

	lower := strings.ToLower(name)
	if base, ok := namedKeys[lower]; ok {
		return applyModifiers(base, mods, 0)
	}
	if strings.HasPrefix(lower, "f") {
		if n, ok := parseFKey(lower); ok {
			base, ok := functionKeyBytes(n)
			if !ok {
				return nil, apperr.New(apperr.InvalidArgument, fmt.Sprintf("unsupported function key %q", name))
			}
			return base, nil
		}
	}

	runes := []rune(name)
	if len(runes) != 1 {
		return nil, apperr.New(apperr.InvalidArgument, fmt.Sprintf("unknown key name %q in key spec %q", name, spec))
	}
	r := runes[0]

	if mods&modCtrl != 0 {
		b, ok := ctrlByte(r)
		if !ok {
			return nil, apperr.New(apperr.InvalidArgument, fmt.Sprintf("Ctrl is not defined for key %q", name))
		}
		return []byte{b}, nil
	}
	if mods&modAlt != 0 {
		// xterm metaSendsEscape convention: ESC prefix before the key byte.
		return append([]byte{0x1b}, []byte(string(r))...), nil
	}
	return []byte(string(r)), nil
}

// applyModifiers encodes Ctrl/Alt onto a named-key base sequence. Shift and
// Meta on named keys follow the xterm CSI ";<n>" modifier-parameter
// convention; Ctrl on arrow/navigation keys uses the same convention since,
// unlike letters, they have no dedicated control byte.
func applyModifiers(base []byte, mods modifier, _ int) ([]byte, error) {
	if mods == 0 {
		return base, nil
	}
	s := string(base)
	param := xtermModParam(mods)
	if param == 0 {
		return base, nil
	}
	switch {
	case strings.HasPrefix(s, "\x1b[") && len(s) == 3:
		// e.g. ESC [ A  ->  ESC [ 1 ; <param> A
		final := s[2]
		return []byte(fmt.Sprintf("\x1b[1;%d%c", param, final)), nil
	case strings.HasSuffix(s, "~"):
		return []byte(s[:len(s)-1] + fmt.Sprintf(";%d~", param)), nil
	case s == "\r" || s == "\t" || s == "\x1b" || s == " " || s == "\x7f":
		// No standard xterm CSI-u encoding path without negotiating the
		// kitty keyboard protocol; emit ESC-prefixed for Alt, else plain.
		if mods&modAlt != 0 {
			return append([]byte{0x1b}, base...), nil
		}
		return base, nil
	}
	return base, nil
}

// xtermModParam encodes the modifier bitset as xterm's "1 + bits" CSI
// parameter (Shift=1, Alt=2, Ctrl=4, Meta=8; e.g. Shift+Ctrl = 1+1+4 = 6).
func xtermModParam(mods modifier) int {
	n := 0
	if mods&modShift != 0 {
		n |= 1
	}
	if mods&modAlt != 0 {
		n |= 2
	}
	if mods&modCtrl != 0 {
		n |= 4
	}
	if mods&modMeta != 0 {
		n |= 8
	}
	if n == 0 {
		return 0
	}
	return n + 1
}

func parseModifier(s string) (modifier, bool) {
	switch strings.ToLower(s) {
	case "ctrl", "control":
		return modCtrl, true
	case "shift":
		return modShift, true
	case "alt", "option":
		return modAlt, true
	case "meta", "super", "cmd":
		return modMeta, true
	}
	return 0, false
}

func parseFKey(lower string) (int, bool) {
	digits := lower[1:]
	if digits == "" {
		return 0, false
	}
	n := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if n < 1 || n > 24 {
		return 0, false
	}
	return n, true
}

// splitKeySpec splits on '+' or '-' separators while tolerating a literal
// trailing "+" or "-" as the key name itself (e.g. "Ctrl++" for Ctrl+Plus,
// "Ctrl+-" for Ctrl+Minus).
func splitKeySpec(spec string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(spec); i++ {
		if spec[i] == '+' || spec[i] == '-' {
			if i == len(spec)-1 {
				// trailing separator is the literal key name
				break
			}
			if i > start {
				parts = append(parts, spec[start:i])
			}
			start = i + 1
		}
	}
	parts = append(parts, spec[start:])
	return parts
}
