package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tempo/internal/core/domain"
	"gopkg.in/yaml.v3"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2024-02-29", "2024-02-29", false},
		{"2024-01-01T23:30:00Z", "2024-01-01", false},
		{"2024-01-01T23:30:00-05:00", "2024-01-01", false},
		{"01/02/2024", "", true},
		{"", "", true},
		{"2023-02-29", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := domain.ParseDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid date")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDateOf_UsesOwnLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	ts := time.Date(2024, time.March, 10, 22, 0, 0, 0, loc)

	assert.Equal(t, "2024-03-10", domain.DateOf(ts).String())
	assert.Equal(t, time.UTC, domain.DateOf(ts).Time().Location())
}

func TestDate_Arithmetic(t *testing.T) {
	d := domain.NewDate(2024, time.February, 28)

	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2023-12-31", domain.NewDate(2024, time.January, 1).AddDays(-1).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.True(t, d.Equal(domain.MustParseDate("2024-02-28")))
	assert.Equal(t, time.Wednesday, d.Weekday())
	assert.True(t, domain.Date{}.IsZero())
}

func TestDate_YAML(t *testing.T) {
	type doc struct {
		Start domain.Date  `yaml:"start"`
		End   *domain.Date `yaml:"end,omitempty"`
	}

	var in doc
	require.NoError(t, yaml.Unmarshal([]byte("start: 2024-07-04\n"), &in))
	assert.Equal(t, "2024-07-04", in.Start.String())
	assert.Nil(t, in.End)

	out, err := yaml.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, "start: \"2024-07-04\"\n", string(out))

	err = yaml.Unmarshal([]byte("start: tomorrow\n"), &in)
	require.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Day domain.Date `json:"day"`
	}{domain.NewDate(2024, time.December, 25)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-12-25"}`, string(out))

	var d domain.Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-12-25"`), &d))
	assert.Equal(t, domain.NewDate(2024, time.December, 25), d)

	require.Error(t, json.Unmarshal([]byte(`42`), &d))
}
