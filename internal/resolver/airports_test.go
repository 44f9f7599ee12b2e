package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cherrypick/internal/types"
)

func TestAirportIndex_RouteType(t *testing.T) {
	idx := NewAirportIndex()

	tests := []struct {
		name string
		it   types.Itinerary
		want types.RouteType
	}{
		{"domestic", types.Itinerary{Origin: "GMP", Destination: "CJU"}, types.RouteDomestic},
		{"international", types.Itinerary{Origin: "ICN", Destination: "LAX"}, types.RouteInternational},
		{"domestic endpoints with foreign transit", types.Itinerary{Origin: "ICN", Destination: "PUS", Via: []string{"NRT"}}, types.RouteInternational},
		{"unknown airport is conservative", types.Itinerary{Origin: "ICN", Destination: "ZZZ"}, types.RouteInternational},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.RouteType(tt.it))
		})
	}
}

func TestAirportIndex_Countries(t *testing.T) {
	idx := NewAirportIndex()

	countries, unknown := idx.Countries(types.Itinerary{
		Origin: "icn", Via: []string{"NRT", "HND"}, Destination: "LAX",
	})
	assert.Equal(t, []string{"KR", "JP", "US"}, countries, "lowercase codes accepted, duplicates folded")
	assert.Empty(t, unknown)

	_, unknown = idx.Countries(types.Itinerary{Origin: "ICN", Destination: "XYZ"})
	assert.Equal(t, []string{"XYZ"}, unknown)
}

func TestLoadAirportIndex(t *testing.T) {
	t.Run("missing file falls back to built-in", func(t *testing.T) {
		idx, err := LoadAirportIndex(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		c, ok := idx.Country("ICN")
		require.True(t, ok)
		assert.Equal(t, "KR", c)
	})

	t.Run("file replaces the table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "airports.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"AAA": "ZZ"}`), 0o644))

		idx, err := LoadAirportIndex(path)
		require.NoError(t, err)
		_, ok := idx.Country("ICN")
		assert.False(t, ok)
		c, ok := idx.Country("aaa")
		require.True(t, ok)
		assert.Equal(t, "ZZ", c)
	})

	t.Run("bad entry rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "airports.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"TOOLONG": "KR"}`), 0o644))
		_, err := LoadAirportIndex(path)
		assert.ErrorContains(t, err, "bad entry")
	})
}
