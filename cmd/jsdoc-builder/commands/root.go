// Package commands holds the cobra commands of the jsdoc-builder binary.
package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jsdoc-builder/annotate"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/logger"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsdoc-builder <file>",
		Short: "Insert JSDoc comments before undocumented JavaScript and TypeScript functions",
		Long: `jsdoc-builder finds functions without a preceding doc comment and inserts one
in place: a description (from an AI provider, or "<name> function"), one
@param line per parameter and an @returns line, with types taken from
annotations or inferred from the code.

Configuration is read from ./jsdoc-builder.config.json unless --config is
given. Credentials may come from the environment or a .env file
(OPENAI_API_KEY, GEMINI_API_KEY, GOOGLE_API_KEY).

Examples:
  jsdoc-builder src/util.ts             # annotate one file in place
  jsdoc-builder src/util.ts --stdout    # print the result instead
  jsdoc-builder run src --changed       # annotate changed files under src
  jsdoc-builder watch src               # annotate on save
  jsdoc-builder serve                   # bridge for bundler plugins
  jsdoc-builder mcp                     # MCP tools over stdio`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is normal; set variables win over the file.
			_ = godotenv.Load()

			verbosity, _ := cmd.Flags().GetCount("verbose")
			jsonLogs, _ := cmd.Flags().GetBool("json-logs")
			if err := logger.Initialize(jsonLogs, verbosity); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			logger.Debugw("Logger initialized", "level", logger.LevelName(verbosity))
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				pterm.DisableColor()
			}
			return nil
		},
		RunE: runAnnotate,
	}

	root.PersistentFlags().StringP("config", "c", "", "Config file (default ./jsdoc-builder.config.json)")
	root.PersistentFlags().Bool("no-ai", false, "Use fallback descriptions; never call an AI provider")
	root.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	root.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.Flags().Bool("stdout", false, "Print the annotated text instead of writing the file")

	root.AddCommand(
		newRunCmd(),
		newWatchCmd(),
		newServeCmd(),
		newMCPCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// optionsFromFlags builds run options from the persistent flags.
func optionsFromFlags(cmd *cobra.Command) annotate.Options {
	configPath, _ := cmd.Flags().GetString("config")
	noAI, _ := cmd.Flags().GetBool("no-ai")
	return annotate.Options{
		ConfigPath: configPath,
		DisableAI:  noAI,
		Getenv:     os.Getenv,
	}
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	path := args[0]
	opts := optionsFromFlags(cmd)
	toStdout, _ := cmd.Flags().GetBool("stdout")

	if toStdout {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.WithHint(
				errors.Mark(errors.Wrapf(err, "read %s", path), errors.ErrSourceRead),
				"check that the file exists and is readable")
		}
		res, err := annotate.Transform(cmd.Context(), path, string(data), opts)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write([]byte(res.Code))
		printWarnings(cmd, res.Warnings)
		return err
	}

	res, err := annotate.AnnotateFile(cmd.Context(), path, opts)
	if err != nil {
		return err
	}
	printWarnings(cmd, res.Warnings)
	out := cmd.OutOrStdout()
	if res.Changed {
		pterm.Success.WithWriter(out).Printfln("Annotated %d function(s) in %s", len(res.Targets), path)
	} else {
		pterm.Info.WithWriter(out).Printfln("Nothing to annotate in %s", path)
	}
	return nil
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		pterm.Warning.WithWriter(cmd.ErrOrStderr()).Println(w)
	}
}
