package main

import (
	"log/slog"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/pp"
	"github.com/spf13/cobra"

	"github.com/ImSingee/relsync/internal/syncer"
)

func (c *cli) syncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download all releases and mirror the latest versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd)
		},
	}

	c.addDownloadFlags(cmd)
	c.addMirrorFlags(cmd)

	return cmd
}

func (c *cli) runSync(cmd *cobra.Command) error {
	s, err := c.newSyncer(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := c.context(cmd)
	defer cancel()

	result, err := s.Sync(ctx)
	if err != nil {
		// an unreachable release list is reported without failing the run
		if ee.Is(err, syncer.ErrDownloadFailed) {
			pp.ERedPrintln("Error:", err.Error())
			return nil
		}
		return err
	}

	if result.Mirror != nil && !result.Mirror.Unmounted {
		slog.Warn("Cannot unmount WebDAV, unmount it manually", "mountPoint", s.Config.MountPoint, "err", result.Mirror.UnmountErr)
	}

	return nil
}
