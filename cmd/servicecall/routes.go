package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the named routes of the configured catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		c, _, err := openClient(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		names := c.Routes()
		if len(names) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no routes configured")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, n := range names {
			r, err := c.Route(n)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", n, r.Method, r.Endpoint)
		}
		return tw.Flush()
	},
}
