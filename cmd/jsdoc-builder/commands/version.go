package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/jsdoc-builder/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version, build time, commit hash and platform.

With --check, exit non-zero unless this build satisfies the given semver
constraint (useful in CI: jsdoc-builder version --check ">= 1.2").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			constraint, _ := cmd.Flags().GetString("check")
			info := version.Get()
			out := cmd.OutOrStdout()

			if constraint != "" {
				if err := info.Check(constraint); err != nil {
					return err
				}
			}

			if jsonOutput {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			fmt.Fprintln(out, info.String())
			return nil
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
	cmd.Flags().String("check", "", "Fail unless the version satisfies this constraint")
	return cmd
}
