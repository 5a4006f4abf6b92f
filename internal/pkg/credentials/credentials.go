package credentials

import "strings"

// Normalize cleans an operator supplied secret before it is used as a bearer
// credential. It returns false when nothing usable is left.
//
// Whitespace is removed everywhere (copy/paste from dashboards tends to wrap
// long keys), surrounding quotes are stripped, and legacy keys pasted as
// "skXXXX" get their missing "_" separator back. Modern "sk-..." and "sk_..."
// keys are returned as-is.
func Normalize(raw string) (string, bool) {
	key := strings.Join(strings.Fields(raw), "")
	key = strings.Trim(key, `"'`)
	if key == "" {
		return "", false
	}

	if strings.HasPrefix(key, "sk") && !strings.HasPrefix(key, "sk_") && !strings.HasPrefix(key, "sk-") {
		key = "sk_" + key[2:]
	}
	return key, true
}
