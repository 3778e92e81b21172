package controls

import "strings"

// Alias tables map many accepted spellings onto one canonical action word,
// per command family. Unrecognized words pass through unchanged so the
// downstream validation can reject them with a specific error instead of
// the normalizer silently swallowing typos.

var powerAliases = buildAliases(map[string][]string{
	"on":      {"on", "start", "up", "boot", "poweron"},
	"off":     {"off", "stop", "down", "shutdown", "poweroff"},
	"restart": {"restart", "reboot", "bounce", "cycle"},
})

var scheduleAliases = buildAliases(map[string][]string{
	"clear": {"clear", "reset", "unset"},
})

var disableAliases = buildAliases(map[string][]string{
	"cancel": {"cancel", "clear"},
})

var stakeholderAliases = buildAliases(map[string][]string{
	"claim":  {"claim", "add", "register"},
	"remove": {"remove", "release", "unclaim"},
	"check":  {"check", "status"},
})

// buildAliases inverts a canonical→spellings table into a lookup map.
func buildAliases(table map[string][]string) map[string]string {
	lookup := make(map[string]string)
	for canonical, spellings := range table {
		for _, s := range spellings {
			lookup[s] = canonical
		}
	}
	return lookup
}

// normalize maps word through the alias table, case-insensitively, passing
// unknown words through unchanged.
func normalize(word string, aliases map[string]string) string {
	lower := strings.ToLower(word)
	if canonical, ok := aliases[lower]; ok {
		return canonical
	}
	return lower
}
