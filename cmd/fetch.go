package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"spotigrab/services"
	"spotigrab/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <reference>",
	Short: "Download a track or playlist once and print the outcome as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		defer logger.Sync() //nolint:errcheck

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		progress := func(done, total int, outcome types.TrackOutcome) {
			if total < 2 {
				return
			}
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("downloading playlist"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Set(done) //nolint:errcheck
		}

		result, err := a.dispatcher.Dispatch(ctx, args[0], progress)
		if bar != nil {
			bar.Finish() //nolint:errcheck
		}
		if errors.Is(err, services.ErrInvalidInput) {
			return fmt.Errorf("%s: %q", services.MsgInvalidURL, args[0])
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Body()); err != nil {
			return err
		}

		if !succeeded(result) {
			return errors.New("download failed")
		}
		return nil
	},
}

func succeeded(r types.Result) bool {
	if r.Batch != nil {
		return r.Batch.Status == types.StatusSuccess
	}
	return r.Track != nil && r.Track.Status == types.StatusSuccess
}
