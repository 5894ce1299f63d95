package calvin

import (
	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/events"
	"github.com/spf13/cobra"
)

func newDeployCmd(g *globalOptions) *cobra.Command {
	var (
		dryRun    bool
		conflicts string
	)

	cmd := &cobra.Command{
		Use:     "deploy",
		Short:   MsgDeployShort,
		Long:    MsgDeployLong,
		Example: MsgDeployExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			r, err := a.resolver(conflicts)
			if err != nil {
				return err
			}

			res, err := a.engine(r, dryRun, events.NewLogSink()).Deploy(cmd.Context())
			if err != nil {
				// An unresolved plan is still worth showing.
				if res != nil && res.Plan != nil && errors.IsErrorCode(err, errors.ErrConflictUnresolved) {
					_ = a.out.RenderPlan("deploy", res.Plan)
				}
				return err
			}
			if err := a.out.RenderResult("deploy", res); err != nil {
				return err
			}
			return fileErrors(res)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().StringVar(&conflicts, "conflicts", "", MsgFlagConflicts)

	return cmd
}
