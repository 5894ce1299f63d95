package calvin

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/calvin/internal/version"
	"github.com/arthur-debert/calvin/pkg/cobrax/topics"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

// globalOptions are the persistent flags every command reads.
type globalOptions struct {
	verbosity int
	project   string
	json      bool
	targets   []string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "calvin",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Get().Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&g.project, "project", "C", "", MsgFlagProject)
	rootCmd.PersistentFlags().BoolVar(&g.json, "json", false, MsgFlagJSON)
	rootCmd.PersistentFlags().StringSliceVarP(&g.targets, "targets", "t", nil, MsgFlagTargets)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newDeployCmd(g))
	rootCmd.AddCommand(newDiffCmd(g))
	rootCmd.AddCommand(newWatchCmd(g))
	rootCmd.AddCommand(newMigrateCmd(g))
	rootCmd.AddCommand(newVersionCmd())

	// Topic-based help; markdown is rendered through glamour on a terminal
	var renderer topics.Renderer = &topics.PlainRenderer{}
	if terminalOut() {
		renderer = topics.NewGlamourRenderer()
	}
	if sub, err := fs.Sub(topicFiles, "topics"); err == nil {
		opts := topics.Options{Extensions: []string{".txt", ".md"}, Renderer: renderer}
		if err := topics.InitializeWithOptions(rootCmd, sub, opts); err != nil {
			log.Warn().Err(err).Msg("help topics unavailable")
		}
	}
	rootCmd.SetHelpCommandGroupID("misc")
	rootCmd.SetCompletionCommandGroupID("misc")

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := version.Get()
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, v.Version, v.Commit, v.Date)
		},
	}
}
