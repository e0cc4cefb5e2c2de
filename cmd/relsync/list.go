package main

import (
	"strings"

	"github.com/ImSingee/go-ex/mr"
	"github.com/ImSingee/go-ex/pp"
	"github.com/spf13/cobra"
)

func (c *cli) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the versions in the working directory and which of them would be mirrored",
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

			kept := make(map[string]bool, len(plan.Keep))
			for _, v := range plan.Keep {
				kept[v] = true
			}

			pp.Printf("Found %d versions, keeping %d\n", len(plan.Versions), len(plan.Keep))
			for i := len(plan.Versions) - 1; i >= 0; i-- {
				v := plan.Versions[i]
				files := strings.Join(plan.Files.Files(v), ", ")
				if kept[v] {
					pp.Println("*", pp.GreenString(v).GetForStdout(), " ", files)
				} else {
					pp.Println(" ", v, " ", files)
				}
			}

			dropped := mr.Filter(plan.Versions, func(v string, _ int) bool { return !kept[v] })
			if len(dropped) != 0 {
				pp.Println("Not mirrored:", strings.Join(dropped, ", "))
			}

			return nil
		},
	}
}
