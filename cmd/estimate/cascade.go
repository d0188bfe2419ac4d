package main

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/straye-as/presales-api/internal/finance"
)

type rateFlags struct {
	tax      float64
	overhead float64
	margin   float64
}

func (r *rateFlags) register(cmd *cobra.Command) {
	d := finance.DefaultRates()
	cmd.Flags().Float64Var(&r.tax, "tax", d.Tax.InexactFloat64(), "tax rate as a fraction")
	cmd.Flags().Float64Var(&r.overhead, "overhead", d.Overhead.InexactFloat64(), "overhead rate as a fraction")
	cmd.Flags().Float64Var(&r.margin, "margin", d.Margin.InexactFloat64(), "margin as a fraction of the price")
}

func (r *rateFlags) toRates() (finance.Rates, error) {
	rates := finance.Rates{
		Tax:      decimal.NewFromFloat(r.tax),
		Overhead: decimal.NewFromFloat(r.overhead),
		Margin:   decimal.NewFromFloat(r.margin),
	}
	return rates, rates.Validate()
}

func newCascadeCmd() *cobra.Command {
	var (
		hours float64
		rate  float64
		rates rateFlags
	)
	cmd := &cobra.Command{
		Use:   "cascade",
		Short: "Preview the cost cascade for a number of hours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rates.toRates()
			if err != nil {
				return err
			}
			return printCascade(hours, rate, r)
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", 0, "total hours")
	cmd.Flags().Float64Var(&rate, "rate", 100, "hourly rate")
	_ = cmd.MarkFlagRequired("hours")
	rates.register(cmd)
	return cmd
}
