package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/tempo/internal/core/domain"
)

func TestIsDoneStatus(t *testing.T) {
	tests := []struct {
		status    string
		canonical string
		want      bool
	}{
		{"completed", "", true},
		{"Done", "", true},
		{"Concluído", "", true},
		{"concluido", "", true},
		{"SUCCESS", "", true},
		{"Task done!", "", true},
		{"Finalizado", "finalizado", true},
		{"in progress", "", false},
		{"Finalizado", "", false},
		{"", "completed", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsDoneStatus(tt.status, tt.canonical))
		})
	}
}

func TestParseCalendarMode(t *testing.T) {
	tests := []struct {
		input string
		want  domain.CalendarMode
	}{
		{"business_days", domain.BusinessDays},
		{"running_days", domain.RunningDays},
		{"Running-Days", domain.RunningDays},
		{"running", domain.RunningDays},
		{"", domain.BusinessDays},
		{"lunar", domain.BusinessDays},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.ParseCalendarMode(tt.input), "input %q", tt.input)
	}
}

func TestParseLinkType(t *testing.T) {
	for _, s := range []string{"FS", "ss", "Ff", "SF"} {
		_, ok := domain.ParseLinkType(s)
		assert.True(t, ok, s)
	}
	_, ok := domain.ParseLinkType("XX")
	assert.False(t, ok)
}

func TestLinkKind_String(t *testing.T) {
	assert.Equal(t, "structured", domain.LinkStructured.String())
	assert.Equal(t, "literal", domain.LinkLiteral.String())
}
