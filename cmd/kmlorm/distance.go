package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1F47E/kmlorm/pkg/spatial"
)

var strategies = map[string]spatial.Strategy{
	"haversine":       spatial.Haversine{},
	"vincenty":        spatial.Vincenty{},
	"equirectangular": spatial.Equirectangular{},
	"adaptive":        spatial.Adaptive{HighAccuracy: true},
}

type distanceResult struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Distance float64 `json:"distance"`
	Unit     string  `json:"unit"`
	Strategy string  `json:"strategy"`
	Bearing  float64 `json:"bearing"`
	Midpoint string  `json:"midpoint"`
}

func newDistanceCmd(a *app) *cobra.Command {
	var (
		unitName     string
		strategyName string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:     "distance LON,LAT LON,LAT",
		Short:   "Great-circle distance, bearing and midpoint between two coordinates",
		Example: "  kmlorm distance -- -76.6,39.3 -77.0,38.9 --unit mi",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePoint(args[0])
			if err != nil {
				return err
			}
			to, err := parsePoint(args[1])
			if err != nil {
				return err
			}
			unit, err := spatial.ParseUnit(unitName)
			if err != nil {
				return err
			}
			strategy, ok := strategies[strings.ToLower(strategyName)]
			if !ok {
				return fmt.Errorf("unknown strategy %q", strategyName)
			}

			res := distanceResult{
				From:     from.String(),
				To:       to.String(),
				Distance: unit.FromKm(strategy.Distance(from, to)),
				Unit:     unitName,
				Strategy: strings.ToLower(strategyName),
				Bearing:  spatial.Bearing(from, to),
				Midpoint: spatial.Midpoint(from, to).String(),
			}
			a.logger.Debug("Computed distance", slog.String("strategy", res.Strategy), slog.Float64("km", strategy.Distance(from, to)))

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res)
			}
			fmt.Fprintf(out, "%s %s\n", render(subtitleStyle, "Distance:"), render(statStyle, fmt.Sprintf("%.3f %s", res.Distance, res.Unit)))
			fmt.Fprintf(out, "%s %.2f°\n", render(subtitleStyle, "Bearing: "), res.Bearing)
			fmt.Fprintf(out, "%s %s\n", render(subtitleStyle, "Midpoint:"), res.Midpoint)
			return nil
		},
	}
	cmd.Flags().StringVarP(&unitName, "unit", "u", "km", "Unit: m, km, mi, nmi, ft, yd")
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "haversine", "Strategy: haversine, vincenty, equirectangular, adaptive")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
