package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jwulff/glucose-go/internal/app"
)

var (
	alarmLowSound        string
	alarmHighSound       string
	alarmConnectionSound string
	alarmExpiringSound   string
	alarmIgnoreMute      bool
	alarmLow             int
	alarmHigh            int
	alarmPreview         bool
)

var alarmCmd = &cobra.Command{
	Use:   "alarm",
	Short: "Inspect and change alarm settings",
}

var alarmGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current alarm settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := getApp().AlarmGet(cmd.Context())
		return err
	},
}

var alarmSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change alarm sounds, thresholds or mute handling",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := app.AlarmSetOptions{Preview: alarmPreview}
		if flags.Changed("low-sound") {
			opts.LowSound = &alarmLowSound
		}
		if flags.Changed("high-sound") {
			opts.HighSound = &alarmHighSound
		}
		if flags.Changed("connection-sound") {
			opts.ConnectionSound = &alarmConnectionSound
		}
		if flags.Changed("expiring-sound") {
			opts.ExpiringSound = &alarmExpiringSound
		}
		if flags.Changed("ignore-mute") {
			opts.IgnoreMute = &alarmIgnoreMute
		}
		if flags.Changed("low") {
			opts.Low = &alarmLow
		}
		if flags.Changed("high") {
			opts.High = &alarmHigh
		}
		_, err := getApp().AlarmSet(cmd.Context(), opts)
		return err
	},
}

var alarmResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the configured default alarm settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := getApp().AlarmReset(cmd.Context())
		return err
	},
}

var alarmSoundsCmd = &cobra.Command{
	Use:   "sounds",
	Short: "List the available alarm sounds",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().AlarmSounds()
	},
}

var alarmCheckCmd = &cobra.Command{
	Use:   "check <mg/dL>",
	Short: "Show the alarm a value would raise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		_, err = getApp().AlarmCheck(cmd.Context(), value)
		return err
	},
}

func init() {
	flags := alarmSetCmd.Flags()
	flags.StringVar(&alarmLowSound, "low-sound", "", "Sound for the low glucose alarm")
	flags.StringVar(&alarmHighSound, "high-sound", "", "Sound for the high glucose alarm")
	flags.StringVar(&alarmConnectionSound, "connection-sound", "", "Sound for the connection alarm")
	flags.StringVar(&alarmExpiringSound, "expiring-sound", "", "Sound for the wearing time alarm")
	flags.BoolVar(&alarmIgnoreMute, "ignore-mute", false, "Sound alarms while muted")
	flags.IntVar(&alarmLow, "low", 0, "Low alarm threshold in mg/dL")
	flags.IntVar(&alarmHigh, "high", 0, "High alarm threshold in mg/dL")
	flags.BoolVar(&alarmPreview, "preview", false, "Announce each newly selected sound")

	alarmCmd.AddCommand(alarmGetCmd)
	alarmCmd.AddCommand(alarmSetCmd)
	alarmCmd.AddCommand(alarmResetCmd)
	alarmCmd.AddCommand(alarmSoundsCmd)
	alarmCmd.AddCommand(alarmCheckCmd)
}
