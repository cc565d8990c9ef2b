package domain

import (
	"strconv"
	"strings"
)

// LinkType is the kind of constraint a dependency link expresses.
type LinkType string

const (
	// FinishToStart starts the successor after the predecessor finishes.
	FinishToStart LinkType = "FS"
	// StartToStart starts the successor when the predecessor starts.
	StartToStart LinkType = "SS"
	// FinishToFinish finishes the successor when the predecessor finishes.
	FinishToFinish LinkType = "FF"
	// StartToFinish finishes the successor when the predecessor starts.
	StartToFinish LinkType = "SF"
)

// ParseLinkType returns the LinkType for s, case-insensitively.
func ParseLinkType(s string) (LinkType, bool) {
	switch lt := LinkType(strings.ToUpper(s)); lt {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return lt, true
	default:
		return "", false
	}
}

// LinkKind tags how a DependencyLink was produced.
type LinkKind uint8

const (
	// LinkStructured is a token that matched the predecessor grammar.
	LinkStructured LinkKind = iota
	// LinkLiteral is a token kept verbatim because it did not match the grammar.
	// It always has Type FinishToStart and zero lag.
	LinkLiteral
)

// String returns a readable name for the kind.
func (k LinkKind) String() string {
	if k == LinkLiteral {
		return "literal"
	}
	return "structured"
}

// DependencyLink is one parsed entry of a task's predecessor field.
type DependencyLink struct {
	Kind LinkKind
	Ref  string
	Type LinkType
	Lag  int
}

// String renders the link in its canonical REF TYPE±LAG form.
func (l DependencyLink) String() string {
	var b strings.Builder
	b.WriteString(l.Ref)
	b.WriteByte(' ')
	b.WriteString(string(l.Type))
	if l.Lag >= 0 {
		b.WriteByte('+')
	}
	b.WriteString(strconv.Itoa(l.Lag))
	return b.String()
}
