package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/jsdoc-builder/hook"
	"github.com/teranos/jsdoc-builder/version"
	"github.com/teranos/jsdoc-builder/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transform hook over HTTP and WebSocket",
		Long: `Start the bridge used by bundler plugins:

  POST /transform   {code, id, phase} -> {code, map: null} or null
  GET  /ws          one reply {requestId, result|error} per message
  GET  /healthz     {status, version}`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("addr", server.DefaultAddr, "Listen address")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")

	plugin, err := hook.New(optionsFromFlags(cmd))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.Info.WithWriter(cmd.OutOrStdout()).Printfln("Listening on http://%s", addr)
	return server.New(plugin, version.Get().Semver()).ListenAndServe(ctx, addr)
}
