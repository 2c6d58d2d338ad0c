package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jsdoc-builder/ai/provider"
	"github.com/teranos/jsdoc-builder/ai/tracker"
	"github.com/teranos/jsdoc-builder/annotate"
	"github.com/teranos/jsdoc-builder/config"
	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/gitscope"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Annotate many files, walking directories",
		Long: `Annotate every recognised source file under the given paths (default: the
current directory). Directories are walked, skipping node_modules and dot
directories. Files are processed concurrently; one failing file does not stop
the others.

With --changed only files that git reports as modified, added or untracked
are processed.`,
		RunE: runBatch,
	}
	cmd.Flags().Bool("changed", false, "Only annotate files changed in the git worktree")
	cmd.Flags().Int("concurrency", 4, "Files processed at once")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	opts := optionsFromFlags(cmd)
	changedOnly, _ := cmd.Flags().GetBool("changed")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	cfg, err := annotate.Resolve(opts)
	if err != nil {
		return err
	}
	opts.Config = cfg

	var usage *tracker.UsageTracker
	if client := provider.NewAIClient(cfg.AI); client != nil {
		usage = tracker.NewUsageTracker(client)
		opts.Describer = usage
	}

	extensions := cfg.Hook.Extensions
	if len(extensions) == 0 {
		extensions = config.DefaultExtensions
	}

	var paths []string
	if changedOnly {
		changed, err := gitscope.Changed(args[0], extensions)
		if err != nil {
			return err
		}
		paths = gitscope.Within(changed, args)
	} else {
		paths, err = annotate.Expand(args, extensions)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		pterm.Info.WithWriter(out).Println("No source files to annotate")
		return nil
	}

	results, err := annotate.AnnotateFiles(cmd.Context(), paths, opts, concurrency)
	if err != nil {
		return err
	}

	data := [][]string{{"File", "Functions", "Status"}}
	var annotated, failed int
	for _, r := range results {
		status := "unchanged"
		switch {
		case r.Err != nil:
			status = "error: " + r.Err.Error()
			failed++
		case r.Result.Changed:
			status = "annotated"
			annotated++
		}
		data = append(data, []string{r.Path, strconv.Itoa(len(r.Result.Targets)), status})
		printWarnings(cmd, r.Result.Warnings)
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.WithWriter(out).Printfln("%d file(s), %d annotated, %d failed", len(results), annotated, failed)
	if usage != nil {
		if stats := usage.GetUsageStats(); stats.Requests > 0 {
			pterm.Info.WithWriter(out).Printfln("AI: %d request(s), %d failed, %d token(s)", stats.Requests, stats.Failures, stats.TotalTokens)
		}
	}

	if failed > 0 {
		return errors.Newf("%d of %d file(s) failed", failed, len(results))
	}
	return nil
}
