package finder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonyliqx/nightreign-relic-manager/internal/catalog"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		in      string
		want    relic.Requirement
		wantErr bool
	}{
		{in: "生命力＋１", want: relic.Requirement{Effect: "生命力＋１", Count: 1}},
		{in: " 生命力＋１ * 2 ", want: relic.Requirement{Effect: "生命力＋１", Count: 2}},
		{in: "a*b", want: relic.Requirement{Effect: "a*b", Count: 1}},
		{in: "a*0", wantErr: true},
		{in: "*3", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRequirement(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidQuery), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.want.Effect != "a*b" {
				back, err := ParseRequirement(FormatRequirement(got))
				require.NoError(t, err)
				assert.Equal(t, got, back)
			}
		})
	}
}

func TestParseQueryString(t *testing.T) {
	q, err := ParseQueryString("?nightfarer=wylder&required=a%2A2,b&avoided=c%2Cd,,e&max=5&ignored=1")
	require.NoError(t, err)
	assert.Equal(t, Query{
		Nightfarer: "wylder",
		Required:   []relic.Requirement{{Effect: "a", Count: 2}, {Effect: "b", Count: 1}},
		Avoided:    []string{"c,d", "e"},
		MaxResults: 5,
	}, q)

	_, err = ParseQueryString("max=lots")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = ParseQueryString("required=%zz")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = ParseQueryString("required=x*0")
	assert.ErrorIs(t, err, ErrInvalidQuery)

	empty, err := ParseQueryString("")
	require.NoError(t, err)
	assert.Equal(t, Query{}, empty)
}

func TestQueryEncodeRoundTrip(t *testing.T) {
	q := Query{
		Nightfarer: "追踪者",
		Required:   []relic.Requirement{{Effect: "生命力＋１", Count: 2}, {Effect: "a, b & c", Count: 1}},
		Avoided:    []string{"受到损伤时，会累积中毒量表"},
		MaxResults: 20,
	}
	back, err := ParseQueryString(q.Encode())
	require.NoError(t, err)
	assert.Equal(t, q, back)

	assert.Equal(t, "", Query{}.Encode())
}

func TestQueryNormalize(t *testing.T) {
	q := Query{
		Nightfarer: " wylder ",
		Required: []relic.Requirement{
			{Effect: " 生命力+1 ", Count: 1},
			{Effect: "", Count: 1},
			{Effect: "unknown", Count: 1},
			{Effect: "生命力＋１", Count: 3},
		},
		Avoided: []string{"降低生命力", " ", "降低生命力"},
	}
	got := q.Normalize(catalog.Default().Vocabulary())
	assert.Equal(t, "wylder", got.Nightfarer)
	assert.Equal(t, []relic.Requirement{
		{Effect: "生命力＋１", Count: 3},
		{Effect: "unknown", Count: 1},
	}, got.Required)
	assert.Equal(t, []string{"降低生命力"}, got.Avoided)

	// Without a canonicaliser names are only trimmed.
	plain := q.Normalize(nil)
	assert.Equal(t, "生命力+1", plain.Required[0].Effect)
}

func TestQueryValidate(t *testing.T) {
	assert.NoError(t, Query{Nightfarer: "wylder"}.Validate())

	err := Query{
		Required:   []relic.Requirement{{Effect: "a", Count: 0}},
		Avoided:    []string{""},
		MaxResults: -1,
	}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidQuery)
	for _, want := range []string{"nightfarer is required", `count of "a"`, "avoided effect name is empty", "max results"} {
		assert.Contains(t, err.Error(), want)
	}
}
