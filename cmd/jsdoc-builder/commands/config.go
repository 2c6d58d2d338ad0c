package commands

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/jsdoc-builder/annotate"
	"github.com/teranos/jsdoc-builder/errors"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration with the API key masked",
		Long: `Print the configuration a run would use: defaults, then the config file,
then --no-ai, with provider defaults and credentials applied.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}
	show.Flags().String("format", "json", "Output format: json, yaml, toml")

	cmd.AddCommand(show)
	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := annotate.Resolve(optionsFromFlags(cmd))
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	redacted := cfg.Redacted()
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		data, err := json.MarshalIndent(redacted, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(redacted)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# jsdoc-builder configuration\n%s", data)

	case "toml":
		fmt.Fprintln(out, "# jsdoc-builder configuration")
		if err := toml.NewEncoder(out).Encode(redacted); err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}

	default:
		return errors.WithHint(
			errors.Newf("unsupported format: %s", format),
			"supported formats: json, yaml, toml")
	}
	return nil
}
