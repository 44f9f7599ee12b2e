package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeStatus_Lattice(t *testing.T) {
	tests := []struct {
		current, incoming, want Status
	}{
		{StatusAllow, StatusAllow, StatusAllow},
		{StatusAllow, StatusLimit, StatusLimit},
		{StatusAllow, StatusDeny, StatusDeny},
		{StatusLimit, StatusAllow, StatusLimit},
		{StatusDeny, StatusAllow, StatusDeny},
		{StatusDeny, StatusLimit, StatusDeny},
	}
	for _, tt := range tests {
		got := MergeStatus(tt.current, tt.incoming)
		assert.Equal(t, tt.want, got, "merge(%s, %s)", tt.current, tt.incoming)
	}
}

func TestMergeStatus_DenyIsSticky(t *testing.T) {
	s := StatusDeny
	for _, in := range []Status{StatusAllow, StatusLimit, StatusDeny} {
		s = MergeStatus(s, in)
		assert.Equal(t, StatusDeny, s)
	}
}

func TestItineraryAirports(t *testing.T) {
	it := Itinerary{Origin: "ICN", Destination: "LAX", Via: []string{"PVG"}}
	assert.Equal(t, []string{"ICN", "PVG", "LAX"}, it.Airports())

	direct := Itinerary{Origin: "GMP", Destination: "CJU"}
	assert.Equal(t, []string{"GMP", "CJU"}, direct.Airports())
}

func TestItemParams_GetAndMerge(t *testing.T) {
	vol := 350.0
	cnt := 3
	p := ItemParams{VolumeML: &vol}

	v, ok := p.Get(ParamVolumeML)
	assert.True(t, ok)
	assert.Equal(t, 350.0, v)

	_, ok = p.Get(ParamWattHours)
	assert.False(t, ok)

	hints := ItemParams{Count: &cnt, VolumeML: ptr(100.0)}
	merged := p.Merge(hints)
	v, _ = merged.Get(ParamVolumeML)
	assert.Equal(t, 350.0, v, "explicit param wins over hint")
	c, ok := merged.Get(ParamCount)
	assert.True(t, ok)
	assert.Equal(t, 3.0, c)
}

func ptr(f float64) *float64 { return &f }
