package hotkey

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.design/x/hotkey"
)

// ParseKey parses a spec like "f9", "ctrl+shift+space" or "alt+d" into the
// modifier set and key expected by the registration layer.
func ParseKey(spec string) ([]hotkey.Modifier, hotkey.Key, error) {
	if spec == "" {
		return nil, 0, fmt.Errorf("empty hotkey spec")
	}
	parts := strings.Split(spec, "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.ToLower(parts[i]))
	}

	var mods []hotkey.Modifier
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierNames[p]
		if !ok {
			return nil, 0, fmt.Errorf("unsupported modifier %q in %q", p, spec)
		}
		mods = append(mods, m)
	}

	key, err := parseKeyToken(parts[len(parts)-1])
	if err != nil {
		return nil, 0, fmt.Errorf("invalid hotkey %q: %w", spec, err)
	}
	return mods, key, nil
}

func parseKeyToken(token string) (hotkey.Key, error) {
	if token == "" {
		return 0, fmt.Errorf("empty key token")
	}
	if k, ok := namedKeys[token]; ok {
		return k, nil
	}
	if len(token) == 1 {
		ch := token[0]
		if ch >= 'a' && ch <= 'z' {
			return letterKeys[ch-'a'], nil
		}
		if ch >= '0' && ch <= '9' {
			return digitKeys[ch-'0'], nil
		}
	}
	if strings.HasPrefix(token, "f") {
		if n, err := strconv.Atoi(token[1:]); err == nil && n >= 1 && n <= 20 {
			return functionKeys[n-1], nil
		}
	}
	return 0, fmt.Errorf("unsupported key token %q", token)
}

// Listen registers the key and forwards press/release edges to onDown/onUp
// until ctx is done. The callbacks run on the listening goroutine, so they
// must not block; the session guard makes them cheap.
func Listen(ctx context.Context, spec string, onDown, onUp func()) error {
	mods, key, err := ParseKey(spec)
	if err != nil {
		return err
	}
	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey %q: %w", spec, err)
	}
	defer func() { _ = hk.Unregister() }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-hk.Keydown():
			onDown()
		case <-hk.Keyup():
			onUp()
		}
	}
}

var letterKeys = [26]hotkey.Key{
	hotkey.KeyA, hotkey.KeyB, hotkey.KeyC, hotkey.KeyD, hotkey.KeyE,
	hotkey.KeyF, hotkey.KeyG, hotkey.KeyH, hotkey.KeyI, hotkey.KeyJ,
	hotkey.KeyK, hotkey.KeyL, hotkey.KeyM, hotkey.KeyN, hotkey.KeyO,
	hotkey.KeyP, hotkey.KeyQ, hotkey.KeyR, hotkey.KeyS, hotkey.KeyT,
	hotkey.KeyU, hotkey.KeyV, hotkey.KeyW, hotkey.KeyX, hotkey.KeyY,
	hotkey.KeyZ,
}

var digitKeys = [10]hotkey.Key{
	hotkey.Key0, hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4,
	hotkey.Key5, hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9,
}

var functionKeys = [20]hotkey.Key{
	hotkey.KeyF1, hotkey.KeyF2, hotkey.KeyF3, hotkey.KeyF4, hotkey.KeyF5,
	hotkey.KeyF6, hotkey.KeyF7, hotkey.KeyF8, hotkey.KeyF9, hotkey.KeyF10,
	hotkey.KeyF11, hotkey.KeyF12, hotkey.KeyF13, hotkey.KeyF14, hotkey.KeyF15,
	hotkey.KeyF16, hotkey.KeyF17, hotkey.KeyF18, hotkey.KeyF19, hotkey.KeyF20,
}

var namedKeys = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"enter":  hotkey.KeyReturn,
	"return": hotkey.KeyReturn,
	"esc":    hotkey.KeyEscape,
	"escape": hotkey.KeyEscape,
	"tab":    hotkey.KeyTab,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
}
