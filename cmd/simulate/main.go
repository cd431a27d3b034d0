// Package main provides a CLI for running one-off parlay simulations.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yourusername/parlayscope/internal/parlay"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	legSpecs   []string
	stakeStr   string
	overrideIn int
	asJSON     bool
)

func init() {
	rootCmd.Flags().StringArrayVarP(&legSpecs, "leg", "l", nil, `Leg as "description@odds", e.g. "Chiefs ML@+150" (repeatable)`)
	rootCmd.Flags().StringVarP(&stakeStr, "stake", "s", "10", "Stake amount")
	rootCmd.Flags().IntVar(&overrideIn, "total-odds", 0, "Stated total odds from the slip, overriding the derived product")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full simulation as JSON")
	rootCmd.MarkFlagRequired("leg")
}

var rootCmd = &cobra.Command{
	Use:     "parlayscope-simulate",
	Short:   "Simulate a parlay payout from the command line",
	Version: fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildDate),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulation()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runSimulation() error {
	stake, err := decimal.NewFromString(stakeStr)
	if err != nil {
		return fmt.Errorf("invalid stake %q: %w", stakeStr, err)
	}

	descriptions := make([]string, 0, len(legSpecs))
	americanOdds := make([]int, 0, len(legSpecs))
	for _, spec := range legSpecs {
		desc, oddsValue, err := parseLegSpec(spec)
		if err != nil {
			return err
		}
		descriptions = append(descriptions, desc)
		americanOdds = append(americanOdds, oddsValue)
	}

	legs, failures := parlay.NewLegs(descriptions, americanOdds)
	for _, failure := range failures {
		fmt.Fprintf(os.Stderr, "leg %d rejected: %v\n", failure.Index+1, failure.Err)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d leg(s) rejected", len(failures))
	}

	var override *int
	if overrideIn != 0 {
		override = &overrideIn
	}

	sim, err := parlay.Simulate(legs, stake, override)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sim)
	}

	fmt.Printf("Legs:\n")
	for _, c := range sim.Contributions {
		fmt.Printf("  %-30s %+d  (%.1f%% implied)\n", c.Leg.Description, c.Leg.AmericanOdds, c.ImpliedProbability*100)
	}
	fmt.Printf("\nTotal odds:      %+d (%.4f decimal)\n", sim.TotalOdds, sim.TotalDecimalOdds)
	fmt.Printf("Win probability: %.2f%% (basis: %s)\n", sim.CombinedProbability*100, sim.ProbabilityBasis)
	fmt.Printf("Stake:           %s\n", sim.Stake.StringFixed(2))
	fmt.Printf("Payout:          %s\n", sim.Payout.StringFixed(2))
	fmt.Printf("Profit:          %s\n", sim.Profit.StringFixed(2))
	fmt.Printf("Expected value:  %s\n", sim.ExpectedValue.StringFixed(2))
	return nil
}

// parseLegSpec splits "description@odds" with the odds after the last @,
// so descriptions may themselves contain @ signs.
func parseLegSpec(spec string) (string, int, error) {
	at := strings.LastIndex(spec, "@")
	if at <= 0 || at == len(spec)-1 {
		return "", 0, fmt.Errorf("invalid leg %q: expected \"description@odds\"", spec)
	}

	desc := strings.TrimSpace(spec[:at])
	oddsStr := strings.TrimSpace(strings.TrimPrefix(spec[at+1:], "+"))
	oddsValue, err := strconv.Atoi(oddsStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid odds in leg %q: %w", spec, err)
	}
	return desc, oddsValue, nil
}
