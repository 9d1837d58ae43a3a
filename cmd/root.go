package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nutricart/nutrigrade/grade"
	// Registers the native boosted-tree backend.
	_ "github.com/nutricart/nutrigrade/grade/xgb"
)

// NewRootCommand builds the nutrigrade command tree. The root command is the
// prediction entry point: one JSON argument in, one JSON line out.
func NewRootCommand() *cobra.Command {
	var settings Settings

	rootCmd := &cobra.Command{
		Use:   "nutrigrade '<json-object>'",
		Short: "Predict a product's Nutri-Score grade from its nutrition facts",
		Long: `nutrigrade reads one JSON object of nutrition facts (energy_100g, sugars_100g,
ingredients_text, additives, ...), runs the trained classifier and prints
{"nutrition_grade": "a".."e", "confidence": 0..100} on stdout.

Every failure is reported inside that JSON document with "fallback": true.
Diagnostics go to stderr.`,
		// The payload may look like a flag ("-1"), so the root command
		// separates its own flags in predictArgs instead of failing parsing.
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !cmd.HasParent() {
				return
			}
			settings = loadSettings(cmd, cmd.Flags())
		},
		Run: func(cmd *cobra.Command, args []string) {
			payload, help, flagErrs := predictArgs(cmd.PersistentFlags(), args)
			if help {
				_ = cmd.Help()
				return
			}
			settings = loadSettings(cmd, cmd.PersistentFlags())
			for _, err := range flagErrs {
				logrus.Warnf("ignoring flag: %v", err)
			}
			writeJSON(cmd.OutOrStdout(), runPredict(settings, payload))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "yaml config file (model_path, native_ext, persist_native, log_level, default_features)")
	flags.String("model", defaultModelPath, "Path to the serialized model bundle; the native model is looked up next to it")
	flags.String("log", defaultLogLevel, "Log level (trace, debug, info, warn, error, fatal, panic)")
	flags.String("native-ext", grade.DefaultNativeExt, "Extension of the native boosted-tree file next to the bundle")
	flags.Bool("persist-native", true, "Save a bundled boosted tree in the native format for faster loads")

	rootCmd.AddCommand(newInspectCommand(&settings))
	rootCmd.AddCommand(newFeaturesCommand(&settings))
	return rootCmd
}

// Execute runs the CLI root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSettings(cmd *cobra.Command, flags *pflag.FlagSet) Settings {
	s := resolveSettings(newViper(flags))
	initLogging(cmd.ErrOrStderr(), s.LogLevel)
	return s
}

// predictArgs applies the known long flags in args to flags and returns the
// remaining positional arguments. Unknown or dash-leading tokens are
// positional; "--" ends flag handling.
func predictArgs(flags *pflag.FlagSet, args []string) (positional []string, help bool, errs []error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return append(positional, args[i+1:]...), help, errs
		case arg == "-h" || arg == "--help":
			help = true
			continue
		case !strings.HasPrefix(arg, "--"):
			positional = append(positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(arg[2:], "=")
		f := flags.Lookup(name)
		if f == nil {
			positional = append(positional, arg)
			continue
		}
		if !hasValue {
			switch {
			case f.NoOptDefVal != "":
				value = f.NoOptDefVal
			case i+1 < len(args):
				i++
				value = args[i]
			default:
				errs = append(errs, fmt.Errorf("--%s needs a value", name))
				continue
			}
		}
		if err := flags.Set(name, value); err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", name, err))
		}
	}
	return positional, help, errs
}

// runPredict grades args[0] and never fails: no argument, bad JSON and
// model errors all come back as fallback results.
func runPredict(s Settings, args []string) grade.Result {
	if len(args) == 0 {
		logrus.Warn("no input data provided")
		return grade.NoInput()
	}
	if len(args) > 1 {
		logrus.Debugf("ignoring %d extra argument(s)", len(args)-1)
	}
	p := grade.NewPredictor(s.ModelPath, s.LoadOptions())
	return p.PredictArgument(args[0])
}

func initLogging(w io.Writer, level string) {
	logrus.SetOutput(w)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.SetLevel(logrus.WarnLevel)
		logrus.Warnf("invalid log level %q, using warn", level)
		return
	}
	logrus.SetLevel(lvl)
}

// writeJSON prints v as a single line. If v cannot be encoded a fixed
// fallback document is printed instead, so stdout always holds valid JSON.
func writeJSON(w io.Writer, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logrus.Errorf("encode result: %v", err)
		data, _ = json.Marshal(grade.Failure(fmt.Errorf("encode result: %w", err)))
	}
	fmt.Fprintln(w, string(data))
}
