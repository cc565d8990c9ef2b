package domain

import "strings"

// DefaultCompletedStatus is the canonical status written to a parent task
// whose roll-up reaches 100%.
const DefaultCompletedStatus = "completed"

var doneAliases = map[string]bool{
	"completed": true,
	"done":      true,
	"success":   true,
	"concluído": true,
	"concluido": true,
}

// IsDoneStatus reports whether a free-text status denotes a finished task.
// The canonical label, its common aliases and anything containing
// "concl", "done" or "completed" are recognized, case-insensitively.
func IsDoneStatus(status, canonical string) bool {
	v := strings.ToLower(strings.TrimSpace(status))
	if v == "" {
		return false
	}
	if canonical != "" && v == strings.ToLower(strings.TrimSpace(canonical)) {
		return true
	}
	if doneAliases[v] {
		return true
	}
	return strings.Contains(v, "concl") || strings.Contains(v, "done") || strings.Contains(v, "completed")
}
