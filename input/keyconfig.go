package input

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"
)

// Rune aliases for keys that can't be bare single-char TOML keys
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
}

// Named special keys accepted in [keys]
var specialKeyNames = map[string]tcell.Key{
	"up":     tcell.KeyUp,
	"down":   tcell.KeyDown,
	"left":   tcell.KeyLeft,
	"right":  tcell.KeyRight,
	"enter":  tcell.KeyEnter,
	"esc":    tcell.KeyEscape,
	"tab":    tcell.KeyTab,
	"ctrl+c": tcell.KeyCtrlC,
	"ctrl+q": tcell.KeyCtrlQ,
	"ctrl+p": tcell.KeyCtrlP,
}

// keymapFile is the keymap document layout
//
//	[runes]
//	p = "pause"
//	[keys]
//	"ctrl+q" = "quit"
type keymapFile struct {
	Runes map[string]string `toml:"runes"`
	Keys  map[string]string `toml:"keys"`
}

// LoadKeyConfig parses TOML keymap data into a sparse override KeyTable
// Only sections/keys present in TOML are populated
// Returns error on unknown action names, invalid key names, or parse failure
func LoadKeyConfig(data []byte) (*KeyTable, error) {
	var f keymapFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("keymap parse: %w", err)
	}

	kt := &KeyTable{}
	if f.Runes != nil {
		kt.Runes = make(map[rune]KeyEntry, len(f.Runes))
		for keyStr, action := range f.Runes {
			r, err := resolveRune(keyStr)
			if err != nil {
				return nil, fmt.Errorf("[runes] key %q: %w", keyStr, err)
			}
			entry, err := resolveAction(action)
			if err != nil {
				return nil, fmt.Errorf("[runes] key %q: %w", keyStr, err)
			}
			kt.Runes[r] = entry
		}
	}
	if f.Keys != nil {
		kt.SpecialKeys = make(map[tcell.Key]KeyEntry, len(f.Keys))
		for keyStr, action := range f.Keys {
			k, ok := specialKeyNames[strings.ToLower(keyStr)]
			if !ok {
				return nil, fmt.Errorf("[keys] unknown key name: %q", keyStr)
			}
			entry, err := resolveAction(action)
			if err != nil {
				return nil, fmt.Errorf("[keys] key %q: %w", keyStr, err)
			}
			kt.SpecialKeys[k] = entry
		}
	}
	return kt, nil
}

// resolveRune converts a TOML key string to a rune
// Accepts single characters and named aliases
func resolveRune(s string) (rune, error) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, nil
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}
	return 0, fmt.Errorf("invalid rune key: %q (expected single character or alias)", s)
}

// resolveAction converts an action name string to a KeyEntry
func resolveAction(name string) (KeyEntry, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	entry, ok := ActionEntry(name)
	if !ok {
		return KeyEntry{}, fmt.Errorf("unknown action: %q", name)
	}
	return entry, nil
}

// MergeKeyTable returns a new KeyTable with base values overridden by non-nil override maps
// Override entries with BehaviorNone ("none" action) delete the key from the result
func MergeKeyTable(base, override *KeyTable) *KeyTable {
	result := base.Clone()
	if result.Runes == nil {
		result.Runes = make(map[rune]KeyEntry)
	}
	if result.SpecialKeys == nil {
		result.SpecialKeys = make(map[tcell.Key]KeyEntry)
	}
	mergeMap(result.Runes, override.Runes)
	mergeMap(result.SpecialKeys, override.SpecialKeys)
	return result
}

func mergeMap[K comparable](base, override map[K]KeyEntry) {
	for k, v := range override {
		if v.Behavior == BehaviorNone {
			delete(base, k)
		} else {
			base[k] = v
		}
	}
}
