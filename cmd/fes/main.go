// Package main is the command line driver: it predicts the tide at one
// point and instant from a FES settings file.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oceanscan/pulvis-fes-api/internal/adapter/store"
	"github.com/oceanscan/pulvis-fes-api/internal/config"
	"github.com/oceanscan/pulvis-fes-api/internal/domain"
	"github.com/oceanscan/pulvis-fes-api/internal/engine"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fes",
		Short:        "FES tide prediction at a point",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", os.Getenv("FES_CONFIG"), "settings file (default is $FES_CONFIG)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(newPredictCmd(), newEvalCmd(), newArgsCmd(), newWavesCmd())
	return root
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

type predictOptions struct {
	pure   bool
	ioMode string
	detail bool
}

func newPredictCmd() *cobra.Command {
	var opts predictOptions

	cmd := &cobra.Command{
		Use:   "predict <epoch_time> <latitude> <longitude>",
		Short: "Print the tide height at a Unix time and position",
		Long: `Prints tide + long-period + loading (the geocentric tide) in the grid
unit. With --pure the loading tide is left out.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFloats(args)
			if err != nil {
				return err
			}

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return predict(cmd.OutOrStdout(), logger, opts, values[0], values[1], values[2])
		},
	}
	cmd.Flags().BoolVar(&opts.pure, "pure", false, "ocean tide only, without loading")
	cmd.Flags().StringVar(&opts.ioMode, "io-mode", "", "override io_mode (memory or io)")
	cmd.Flags().BoolVar(&opts.detail, "detail", false, "print each component")
	_ = cmd.RegisterFlagCompletionFunc("io-mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{store.Memory.String(), store.IO.String()}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func predict(w io.Writer, logger *zap.Logger, opts predictOptions, epoch, lat, lon float64) (err error) {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if opts.ioMode != "" {
		settings.IOMode = opts.ioMode
	}
	mode, err := settings.Mode()
	if err != nil {
		return err
	}

	days := domain.CNESDaysFromUnix(epoch)
	logger.Debug("prediction time", zap.Float64("cnes_days", days))

	ocean, err := engine.Open(domain.Ocean, mode, settings, engine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("ocean tide: %w", err)
	}
	defer func() { err = errors.Join(err, ocean.Close()) }()

	tide, err := ocean.EvaluateCNES(lat, lon, days)
	if err != nil {
		return fmt.Errorf("ocean tide: %w", err)
	}

	var load engine.Result
	if !opts.pure {
		radial, openErr := engine.Open(domain.Radial, mode, settings, engine.WithLogger(logger))
		if openErr != nil {
			return fmt.Errorf("radial tide: %w", openErr)
		}
		defer func() { err = errors.Join(err, radial.Close()) }()

		if load, err = radial.EvaluateCNES(lat, lon, days); err != nil {
			return fmt.Errorf("radial tide: %w", err)
		}
	}

	if tide.Missing > 0 || load.Missing > 0 {
		logger.Warn("waves undefined at point",
			zap.Int("ocean_missing", tide.Missing),
			zap.Int("radial_missing", load.Missing),
		)
	}

	if opts.detail {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "tide\t%f\n", tide.Tide)
		fmt.Fprintf(tw, "lp\t%f\n", tide.LongPeriod)
		if !opts.pure {
			fmt.Fprintf(tw, "load\t%f\n", load.Tide)
		}
		fmt.Fprintf(tw, "total\t%f\t%s\n", total(tide, load), settings.Unit)
		return tw.Flush()
	}
	_, err = fmt.Fprintf(w, "%f\n", total(tide, load))
	return err
}

// total is tide + lp + load. load is zero for pure predictions.
func total(tide, load engine.Result) float64 {
	return tide.Tide + tide.LongPeriod + load.Tide + load.LongPeriod
}

func newWavesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "waves",
		Short: "List the constituent catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDOODSON\tSPECIES\tSPEED (deg/h)\tEQ AMP (m)\tINFERABLE")
			for _, c := range domain.All() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.7f\t%.6f\t%t\n",
					c.Name, c.DoodsonNumber(), c.Species(), c.SpeedDegPerHr(), c.EquilibriumAmp, c.Inferable)
			}
			return tw.Flush()
		},
	}
}

func parseFloats(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", arg, err)
		}
		values[i] = v
	}
	return values, nil
}

func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <ocean|radial> <epoch_time> <latitude> <longitude>",
		Short: "Print the raw result of one session",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			tideType, err := domain.ParseTideType(args[0])
			if err != nil {
				return err
			}
			values, err := parseFloats(args[1:])
			if err != nil {
				return err
			}

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			settings, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			mode, err := settings.Mode()
			if err != nil {
				return err
			}
			h, err := engine.Open(tideType, mode, settings, engine.WithLogger(logger))
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, h.Close()) }()

			r, err := h.EvaluateCNES(values[1], values[2], domain.CNESDaysFromUnix(values[0]))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "tide=%f lp=%f missing=%d unit=%s\n", r.Tide, r.LongPeriod, r.Missing, settings.Unit)
			return err
		},
	}
}

func newArgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "args <epoch_time>",
		Short: "Print the astronomical argument and nodal corrections of every wave",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFloats(args)
			if err != nil {
				return err
			}
			days := domain.CNESDaysFromUnix(values[0])
			arguments := domain.ArgumentsAt(days)

			names := make([]string, 0, len(arguments))
			for name := range arguments {
				names = append(names, name)
			}
			sort.Strings(names)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %s (CNES day %.6f)\n", domain.TimeFromCNESDays(days).Format(time.RFC3339Nano), days)
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tV (deg)\tf\tu (deg)")
			for _, name := range names {
				a := arguments[name]
				fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%.6f\n", name, a.V, a.F, a.U)
			}
			return tw.Flush()
		},
	}
}
