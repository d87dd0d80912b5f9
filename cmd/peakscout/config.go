package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/peakscout/peakscout/internal/perrors"
	"github.com/peakscout/peakscout/internal/refstore"
	"github.com/peakscout/peakscout/internal/writer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys are the persisted defaults peakscout recognizes, each
// with a parser that validates and coerces the raw CLI string into
// the typed value viper stores. Unlisted keys are rejected rather
// than written through verbatim.
var configKeys = map[string]func(string) (any, error){
	"refstore.bucket":    parseNonEmptyString,
	"refstore.cache_dir": parseNonEmptyString,
	"species":            parseSpecies,
	"num_features":       parsePositiveInt,
	"up_bound":           parseNonNegativeInt64,
	"down_bound":         parseNonNegativeInt64,
	"view_window":        parseViewWindow,
	"output_type":        parseOutputType,
	"verbose":            parseBool,
}

func parseNonEmptyString(v string) (any, error) {
	if v == "" {
		return nil, &perrors.ConfigError{Token: v, Msg: "must not be empty"}
	}
	return v, nil
}

func parseSpecies(v string) (any, error) {
	if !refstore.IsSupportedSpecies(v) {
		return nil, &perrors.ConfigError{Token: v, Msg: "unsupported species (known: " + strings.Join(refstore.SupportedSpecies(), ", ") + ")"}
	}
	return v, nil
}

func parsePositiveInt(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return nil, &perrors.ConfigError{Token: v, Msg: "must be an integer >= 1"}
	}
	return n, nil
}

func parseNonNegativeInt64(v string) (any, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil, &perrors.ConfigError{Token: v, Msg: "must be an integer >= 0"}
	}
	return n, nil
}

func parseViewWindow(v string) (any, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 || f >= 1 {
		return nil, &perrors.ConfigError{Token: v, Msg: "must be a fraction strictly between 0 and 1"}
	}
	return f, nil
}

func parseOutputType(v string) (any, error) {
	if writer.OutputType(v) != writer.CSV {
		return nil, &perrors.ConfigError{Token: v, Msg: "unsupported output type (known: csv)"}
	}
	return v, nil
}

func parseBool(v string) (any, error) {
	switch v {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	default:
		return nil, &perrors.ConfigError{Token: v, Msg: "must be one of true/false, yes/no, on/off"}
	}
}

func knownConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage peakscout configuration",
		Long:  "Show, get, or set persisted defaults. Config is stored in ~/.peakscout.yaml.",
		Example: `  peakscout config                             # show all config
  peakscout config set refstore.bucket my-bucket
  peakscout config set species hg38
  peakscout config get species`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(args[0])
		},
	}
}

func runConfigShow() error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("# No configuration set. Config file: ~/.peakscout.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(key, value string) error {
	parse, ok := configKeys[key]
	if !ok {
		return &perrors.ConfigError{Token: key, Msg: "unknown config key (known: " + strings.Join(knownConfigKeys(), ", ") + ")"}
	}
	parsed, err := parse(value)
	if err != nil {
		return err
	}
	viper.Set(key, parsed)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".peakscout.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %v in %s\n", key, parsed, cfgFile)
	return nil
}

func runConfigGet(key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}
