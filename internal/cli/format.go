package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jwulff/glucose-go/internal/app"
)

var (
	formatUnit     string
	formatPrecise  bool
	formatWithUnit bool
	convertFrom    string
)

var formatCmd = &cobra.Command{
	Use:   "format <mg/dL>",
	Short: "Render a glucose value in the display unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parseInts(args)
		if err != nil {
			return err
		}
		out, err := getApp().Format(app.FormatOptions{
			Value:    value[0],
			Unit:     formatUnit,
			Precise:  formatPrecise,
			WithUnit: formatWithUnit,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <value>",
	Short: "Convert a glucose value between mg/dL and mmol/L",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[0], err)
		}
		out, err := getApp().Convert(app.ConvertOptions{Value: value, From: convertFrom})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var elapsedCmd = &cobra.Command{
	Use:   "elapsed <minutes>",
	Short: "Render a number of minutes as days, hours and minutes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := parseInts(args)
		if err != nil {
			return err
		}
		out, err := getApp().Elapsed(minutes[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var nearCmd = &cobra.Command{
	Use:   "near <value> <lower> <upper>",
	Short: "Report whether a value is within one unit of either bound",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseInts(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), getApp().Near(v[0], v[1], v[2]))
		return nil
	},
}

var filesizeCmd = &cobra.Command{
	Use:   "filesize <bytes>",
	Short: "Render a byte count with a binary unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid byte count %q: %w", args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), getApp().FileSize(n))
		return nil
	},
}

var percentCmd = &cobra.Command{
	Use:   "percent <value> <of>",
	Short: "Render value as a percentage of of",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseInts(args)
		if err != nil {
			return err
		}
		out, err := getApp().Percent(v[0], v[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func parseInts(args []string) ([]int, error) {
	values := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", arg, err)
		}
		values[i] = v
	}
	return values, nil
}

func init() {
	formatCmd.Flags().StringVar(&formatUnit, "unit", "", "Unit to render in (defaults to display.unit)")
	formatCmd.Flags().BoolVar(&formatPrecise, "precise", false, "Allow a second fraction digit for mmol/L")
	formatCmd.Flags().BoolVar(&formatWithUnit, "with-unit", false, "Append the unit label")

	convertCmd.Flags().StringVar(&convertFrom, "from", "mg/dL", "Unit the value is given in")
}
