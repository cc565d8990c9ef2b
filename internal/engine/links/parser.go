// Package links parses free-text predecessor fields and resolves their
// references against a project's tasks.
package links

import (
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/tempo/internal/core/domain"
)

// tokenPattern is REF[FS|SS|FF|SF][+N|-N[d]]. The reference is matched lazily
// so that a trailing link type or lag is not swallowed by it.
var tokenPattern = regexp.MustCompile(`^([\w.\-]+?)(FS|SS|FF|SF)?(?:([+-]\d+)d?)?$`)

// Parse turns a predecessor field into links. Tokens are separated by ';' or
// ',' and trimmed; empty tokens are dropped. A token that does not match the
// grammar is kept verbatim as a literal finish-to-start link without lag, so
// Parse never fails. Lags are clamped to ±domain.MaxSpanDays.
func Parse(text string) []domain.DependencyLink {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == ','
	})

	out := make([]domain.DependencyLink, 0, len(fields))
	for _, f := range fields {
		token := strings.TrimSpace(f)
		if token == "" {
			continue
		}
		out = append(out, parseToken(token))
	}
	return out
}

func parseToken(token string) domain.DependencyLink {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return literal(token)
	}

	link := domain.DependencyLink{
		Kind: domain.LinkStructured,
		Ref:  m[1],
		Type: domain.FinishToStart,
	}
	if m[2] != "" {
		lt, _ := domain.ParseLinkType(m[2])
		link.Type = lt
	}
	if m[3] != "" {
		lag, err := strconv.Atoi(m[3])
		if err != nil {
			return literal(token)
		}
		link.Lag = domain.ClampSpan(lag)
	}
	return link
}

func literal(token string) domain.DependencyLink {
	return domain.DependencyLink{
		Kind: domain.LinkLiteral,
		Ref:  token,
		Type: domain.FinishToStart,
	}
}
