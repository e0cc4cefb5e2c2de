package main

import (
	"log/slog"

	"github.com/ImSingee/go-ex/pp"
	"github.com/spf13/cobra"
)

func (c *cli) mirrorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Mirror the latest versions already in the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.newSyncer(cmd)
			if err != nil {
				return err
			}

			plan, err := s.Plan()
			if err != nil {
				return err
			}
			if plan.Empty() {
				pp.Println("No version files found")
				return nil
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			report, err := s.Mirror(ctx, plan)
			if err != nil {
				return err
			}
			if !report.Unmounted {
				slog.Warn("Cannot unmount WebDAV, unmount it manually", "mountPoint", s.Config.MountPoint, "err", report.UnmountErr)
			}

			return nil
		},
	}

	c.addMirrorFlags(cmd)

	return cmd
}
