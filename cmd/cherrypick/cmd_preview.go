package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cherrypick/internal/types"
)

var (
	previewFrom        string
	previewTo          string
	previewVia         []string
	previewRescreening bool
	previewAirline     string
	previewCabin       string
	previewFare        string
	previewLocale      string

	previewVolumeML float64
	previewWH       float64
	previewCount    int
	previewWeightKG float64
	previewABV      float64
	previewBladeCM  float64

	previewDutyFree bool
	previewSTEB     bool

	previewJSON  bool
	previewTrace bool
)

var previewCmd = &cobra.Command{
	Use:   "preview <label>",
	Short: "Preview whether an item may fly on an itinerary",
	Example: `  cherrypick preview "power bank 20000mAh" --from ICN --to LAX --airline KE
  cherrypick preview "whisky 700ml 40%" --from ICN --to CDG --via DXB --rescreening
  cherrypick preview "chef knife" --from GMP --to CJU --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		req := types.PreviewRequest{
			Label:  args[0],
			Locale: previewLocale,
			Itinerary: types.Itinerary{
				Origin:      strings.ToUpper(previewFrom),
				Destination: strings.ToUpper(previewTo),
				Via:         upperAll(previewVia),
				Rescreening: previewRescreening,
			},
			ItemParams: flagParams(cmd),
			DutyFree:   types.DutyFree{IsDF: previewDutyFree, STEBSealed: previewSTEB},
		}
		if previewAirline != "" {
			req.Segments = []types.Segment{{
				Leg:        req.Itinerary.Origin + "-" + req.Itinerary.Destination,
				Operating:  strings.ToUpper(previewAirline),
				CabinClass: previewCabin,
				FareClass:  previewFare,
			}}
		}

		res, err := application.service.Preview(ctx, req)
		if err != nil {
			return err
		}

		if previewJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Fprint(cmd.OutOrStdout(), renderResult(res, previewTrace))
		return nil
	},
}

// flagParams converts only the flags the user actually set, so an absent
// flag stays nil rather than becoming a bogus zero.
func flagParams(cmd *cobra.Command) types.ItemParams {
	var p types.ItemParams
	if cmd.Flags().Changed("volume-ml") {
		p.VolumeML = &previewVolumeML
	}
	if cmd.Flags().Changed("wh") {
		p.WattHours = &previewWH
	}
	if cmd.Flags().Changed("count") {
		p.Count = &previewCount
	}
	if cmd.Flags().Changed("weight-kg") {
		p.WeightKG = &previewWeightKG
	}
	if cmd.Flags().Changed("abv") {
		p.ABVPercent = &previewABV
	}
	if cmd.Flags().Changed("blade-cm") {
		p.BladeLengthCM = &previewBladeCM
	}
	return p
}

func upperAll(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = strings.ToUpper(c)
	}
	return out
}

func init() {
	f := previewCmd.Flags()
	f.StringVar(&previewFrom, "from", "", "origin airport (IATA)")
	f.StringVar(&previewTo, "to", "", "destination airport (IATA)")
	f.StringSliceVar(&previewVia, "via", nil, "transit airports (IATA)")
	f.BoolVar(&previewRescreening, "rescreening", false, "baggage is rescreened at a transit point")
	f.StringVar(&previewAirline, "airline", "", "operating carrier code")
	f.StringVar(&previewCabin, "cabin", "", "cabin class (economy|business|first|prestige)")
	f.StringVar(&previewFare, "fare", "", "fare class")
	f.StringVar(&previewLocale, "locale", "", "label locale hint")

	f.Float64Var(&previewVolumeML, "volume-ml", 0, "container volume in ml")
	f.Float64Var(&previewWH, "wh", 0, "battery capacity in watt-hours")
	f.IntVar(&previewCount, "count", 0, "number of pieces")
	f.Float64Var(&previewWeightKG, "weight-kg", 0, "weight in kg")
	f.Float64Var(&previewABV, "abv", 0, "alcohol strength in percent")
	f.Float64Var(&previewBladeCM, "blade-cm", 0, "blade length in cm")

	f.BoolVar(&previewDutyFree, "duty-free", false, "item is a duty-free purchase")
	f.BoolVar(&previewSTEB, "steb", false, "duty-free item is in a sealed tamper-evident bag")

	f.BoolVar(&previewJSON, "json", false, "emit the full result as JSON")
	f.BoolVar(&previewTrace, "trace", false, "show the rule merge trace")

	_ = previewCmd.MarkFlagRequired("from")
	_ = previewCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(previewCmd)
}
