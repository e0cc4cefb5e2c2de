package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) downloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download all release assets into the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.newSyncer(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			_, err = s.Download(ctx)
			return err
		},
	}

	c.addDownloadFlags(cmd)

	return cmd
}
