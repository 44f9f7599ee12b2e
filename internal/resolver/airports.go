package resolver

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cherrypick/internal/logging"
	"cherrypick/internal/types"
)

// AirportIndex maps IATA airport codes to ISO country codes. It drives
// route-type derivation and country-layer selection.
type AirportIndex struct {
	byIATA map[string]string
}

// defaultAirports covers the airports the advisor sees in practice. An
// airports.json file replaces the table wholesale.
var defaultAirports = map[string]string{
	// Korea
	"ICN": "KR", "GMP": "KR", "PUS": "KR", "CJU": "KR", "TAE": "KR",
	// Japan
	"NRT": "JP", "HND": "JP", "KIX": "JP", "NGO": "JP", "FUK": "JP", "CTS": "JP", "OKA": "JP",
	// China and region
	"PEK": "CN", "PKX": "CN", "PVG": "CN", "SHA": "CN", "CAN": "CN", "SZX": "CN", "CTU": "CN",
	"HKG": "HK", "MFM": "MO", "TPE": "TW", "KHH": "TW",
	// Southeast Asia
	"SIN": "SG", "BKK": "TH", "DMK": "TH", "HKT": "TH", "KUL": "MY", "PEN": "MY",
	"CGK": "ID", "DPS": "ID", "MNL": "PH", "CEB": "PH", "SGN": "VN", "HAN": "VN", "DAD": "VN",
	// South Asia
	"DEL": "IN", "BOM": "IN", "BLR": "IN", "CMB": "LK", "DAC": "BD", "KTM": "NP",
	// Middle East
	"DXB": "AE", "AUH": "AE", "DOH": "QA", "RUH": "SA", "JED": "SA", "TLV": "IL", "IST": "TR", "SAW": "TR",
	// Europe
	"LHR": "GB", "LGW": "GB", "MAN": "GB", "EDI": "GB",
	"CDG": "FR", "ORY": "FR", "NCE": "FR",
	"FRA": "DE", "MUC": "DE", "BER": "DE", "DUS": "DE",
	"AMS": "NL", "BRU": "BE", "LUX": "LU",
	"MAD": "ES", "BCN": "ES", "LIS": "PT", "OPO": "PT",
	"FCO": "IT", "MXP": "IT", "VCE": "IT",
	"ZRH": "CH", "GVA": "CH", "VIE": "AT",
	"CPH": "DK", "ARN": "SE", "OSL": "NO", "HEL": "FI",
	"PRG": "CZ", "WAW": "PL", "BUD": "HU", "ATH": "GR", "DUB": "IE",
	// Americas
	"JFK": "US", "EWR": "US", "LGA": "US", "LAX": "US", "SFO": "US", "SEA": "US",
	"ORD": "US", "ATL": "US", "DFW": "US", "MIA": "US", "BOS": "US", "IAD": "US",
	"DEN": "US", "LAS": "US", "PHX": "US", "IAH": "US", "HNL": "US", "ANC": "US",
	"YVR": "CA", "YYZ": "CA", "YUL": "CA", "YYC": "CA",
	"MEX": "MX", "CUN": "MX", "GRU": "BR", "GIG": "BR", "EZE": "AR",
	"SCL": "CL", "BOG": "CO", "LIM": "PE", "PTY": "PA",
	// Oceania
	"SYD": "AU", "MEL": "AU", "BNE": "AU", "PER": "AU", "AKL": "NZ", "CHC": "NZ", "NAN": "FJ",
	// Africa
	"JNB": "ZA", "CPT": "ZA", "CAI": "EG", "NBO": "KE", "ADD": "ET", "LOS": "NG", "CMN": "MA",
}

// NewAirportIndex returns the built-in airport table.
func NewAirportIndex() *AirportIndex {
	return &AirportIndex{byIATA: defaultAirports}
}

// LoadAirportIndex reads an airports.json file ({"ICN": "KR", ...}).
// An empty path returns the built-in table.
func LoadAirportIndex(path string) (*AirportIndex, error) {
	if path == "" {
		return NewAirportIndex(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Resolver("no airports file at %s, using built-in table", path)
			return NewAirportIndex(), nil
		}
		return nil, fmt.Errorf("read airports %s: %w", path, err)
	}

	byIATA := make(map[string]string)
	if err := json.Unmarshal(data, &byIATA); err != nil {
		return nil, fmt.Errorf("parse airports %s: %w", path, err)
	}
	for iata, country := range byIATA {
		if len(iata) != 3 || len(country) != 2 {
			return nil, fmt.Errorf("airports %s: bad entry %q: %q", path, iata, country)
		}
	}
	logging.Resolver("loaded %d airports from %s", len(byIATA), path)
	return &AirportIndex{byIATA: byIATA}, nil
}

// Country returns the ISO country of an airport.
func (a *AirportIndex) Country(iata string) (string, bool) {
	c, ok := a.byIATA[strings.ToUpper(strings.TrimSpace(iata))]
	return c, ok
}

// Countries maps an itinerary to the ordered, de-duplicated country codes
// along its path. Unknown airports are skipped and reported.
func (a *AirportIndex) Countries(it types.Itinerary) (countries []string, unknown []string) {
	seen := make(map[string]struct{})
	for _, iata := range it.Airports() {
		c, ok := a.Country(iata)
		if !ok {
			unknown = append(unknown, iata)
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		countries = append(countries, c)
	}
	return countries, unknown
}

// RouteType derives domestic vs international. Any unknown airport makes
// the route international: the conservative read of incomplete data.
func (a *AirportIndex) RouteType(it types.Itinerary) types.RouteType {
	countries, unknown := a.Countries(it)
	if len(unknown) > 0 {
		return types.RouteInternational
	}
	if len(countries) <= 1 {
		return types.RouteDomestic
	}
	return types.RouteInternational
}
