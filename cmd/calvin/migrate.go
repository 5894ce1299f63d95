package calvin

import (
	"fmt"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/lockfile"
	"github.com/spf13/cobra"
)

func newMigrateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "migrate",
		Short:   MsgMigrateShort,
		Long:    MsgMigrateLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			path := a.cfg.LedgerPath(a.root)

			if _, statErr := a.fs.Stat(path); statErr != nil {
				return a.out.RenderMessage(fmt.Sprintf(MsgNoLockfile, path))
			}

			_, err = lockfile.Load(a.fs, path)
			switch {
			case err == nil:
				return a.out.RenderMessage(fmt.Sprintf(MsgLockfileCurrent, path, lockfile.FormatVersion))
			case errors.IsErrorCode(err, errors.ErrLedgerVersionMismatch):
				details := errors.GetErrorDetails(err)
				return errors.Newf(errors.ErrLedgerVersionMismatch, MsgMigrateRefused, path, details["found"], details["expected"]).
					WithDetail(errors.DetailPath, path).
					WithRemediation("mv " + path + " " + path + ".bak && calvin deploy")
			default:
				return err
			}
		},
	}
}
