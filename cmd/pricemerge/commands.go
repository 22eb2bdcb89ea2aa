package main

import (
	"fmt"

	"github.com/liznear/price-merge/config"
	"github.com/liznear/price-merge/prices"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0"

type app struct {
	configPath string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pricemerge",
		Short: "Merge time-bounded prices",
		Long: `pricemerge merges new prices into existing ones.

Prices of the same product, line and department never overlap after a merge.
Price files are YAML (.yaml, .yml) or binary (.prices).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default .pricemerge.yaml in . or $HOME)")

	root.AddCommand(a.mergeCommand())
	root.AddCommand(a.checkCommand())
	root.AddCommand(a.convertCommand())
	root.AddCommand(versionCommand())
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) mergeCommand() *cobra.Command {
	var (
		oldPath string
		newPath string
		outPath string
		check   bool
	)
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge new prices into old prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oldPrices, err := readPrices(oldPath, a.cfg.Format)
			if err != nil {
				return err
			}
			newPrices, err := readPrices(newPath, a.cfg.Format)
			if err != nil {
				return err
			}

			var stats prices.Stats
			merged, err := prices.Merge(oldPrices, newPrices, prices.WithLogger(a.logger), prices.WithStats(&stats))
			if err != nil {
				return err
			}
			a.logger.Info("Merged prices",
				zap.String("old", oldPath),
				zap.String("new", newPath),
				zap.Int("merged", len(merged)),
				zap.Int("extended", stats.Extended),
				zap.Int("truncated", stats.Truncated),
				zap.Int("shifted", stats.Shifted),
				zap.Int("split", stats.Split),
				zap.Int("removed", stats.Removed),
				zap.Int("coalesced", stats.Coalesced),
				zap.Int("absorbed", stats.Absorbed),
				zap.Int("passed", stats.Passed),
				zap.Int("emitted", stats.Emitted))

			if check {
				if err := prices.CheckDisjoint(merged); err != nil {
					return fmt.Errorf("merged prices are inconsistent: %w", err)
				}
			}
			return writePrices(outPath, a.cfg.Format, merged)
		},
	}
	cmd.Flags().StringVar(&oldPath, "old", "", "file with the existing prices")
	cmd.Flags().StringVar(&newPath, "new", "", "file with the new prices")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "file to write the merged prices to")
	cmd.Flags().BoolVar(&check, "check", false, "verify that merged prices don't overlap")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Verify that prices in a file don't overlap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := readPrices(args[0], a.cfg.Format)
			if err != nil {
				return err
			}
			if err := prices.CheckDisjoint(ps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d prices, no overlap\n", args[0], len(ps))
			return nil
		},
	}
}

func (a *app) convertCommand() *cobra.Command {
	var repair bool
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert a price file to another format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			read := readPrices
			if repair {
				read = recoverPrices
			}
			ps, err := read(args[0], a.cfg.Format)
			if err != nil {
				return err
			}
			a.logger.Info("Convert prices", zap.String("in", args[0]), zap.String("out", args[1]), zap.Int("prices", len(ps)))
			return writePrices(args[1], a.cfg.Format, ps)
		},
	}
	cmd.Flags().BoolVar(&repair, "recover", false, "drop an incomplete trailing record of a binary input")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:              "version",
		Short:            "Show version information",
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pricemerge %s\n", version)
		},
	}
}
