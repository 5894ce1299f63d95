package calvin

import (
	"github.com/spf13/cobra"
)

func newDiffCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "diff",
		Short:   MsgDiffShort,
		Long:    MsgDiffLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			eng := a.engine(nil, true, nil)

			list, err := eng.LoadAssets()
			if err != nil {
				return err
			}
			desired, err := eng.Render(list)
			if err != nil {
				return err
			}
			plan, _, err := eng.Plan(cmd.Context(), desired)
			if err != nil {
				return err
			}
			return a.out.RenderPlan("diff", plan)
		},
	}
}
