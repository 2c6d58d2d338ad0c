package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jsdoc-builder/annotate"
	"github.com/teranos/jsdoc-builder/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Annotate files as they are saved",
		Long: `Watch directories (default: the current directory) and annotate recognised
files whenever they are written or created. Stop with Ctrl-C.`,
		RunE: runWatch,
	}
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before a saved file is annotated")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")
	out := cmd.OutOrStdout()

	w, err := watch.New(args, optionsFromFlags(cmd),
		watch.WithDebounce(debounce),
		watch.OnResult(func(path string, res annotate.Result, err error) {
			switch {
			case err != nil:
				pterm.Error.WithWriter(cmd.ErrOrStderr()).Printfln("%s: %v", path, err)
			case res.Changed:
				pterm.Success.WithWriter(out).Printfln("Annotated %d function(s) in %s", len(res.Targets), path)
			}
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.Info.WithWriter(out).Printfln("Watching %v (Ctrl-C to stop)", args)
	return w.Run(ctx)
}
