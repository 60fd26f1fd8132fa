package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz/internal/demo"
)

func newSeedCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the prior-authorization demo dataset",
		Long:  `Load the payor, plan and document nodes used by the canned queries. Existing demo nodes are replaced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			exec, err := connect(ctx, g.cfg)
			if err != nil {
				return err
			}
			defer exec.Close(ctx)

			st := startStage(logger, "seed")
			stats, err := demo.Seed(ctx, exec, demo.Sample())
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			st.done("seeded demo dataset", "nodes", stats.Nodes, "relationships", stats.Relationships)
			return nil
		},
	}
}
