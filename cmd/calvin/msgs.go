package calvin

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "Deploy AI agent assets and keep them in sync"
	MsgDeployShort  = "Sync the source directory into every target"
	MsgDiffShort    = "Show what deploy would change"
	MsgWatchShort   = "Deploy, then sync again whenever the source changes"
	MsgMigrateShort = "Check the lockfile format version"
	MsgVersionShort = "Print version information"

	// Status messages
	MsgWatching        = "Watching %s (Ctrl-C to stop)"
	MsgWatchStopped    = "Stopped watching."
	MsgLockfileCurrent = "%s uses format %d, nothing to migrate."
	MsgNoLockfile      = "No lockfile at %s yet, nothing to migrate."
	MsgVersionFormat   = "calvin version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrProjectRoot      = "failed to resolve project root"
	MsgErrFilesFailed      = "%d file(s) could not be synced"
	MsgErrNeedsTerminal    = "interactive conflict resolution needs a terminal"
	MsgErrWatchInteractive = "watch resolves conflicts by policy and cannot prompt"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun         = "Preview changes without executing them"
	MsgFlagConflicts      = "How to resolve conflicts: auto, interactive, fail-fast, skip-all, force-overwrite"
	MsgFlagJSON           = "Print machine readable JSON"
	MsgFlagProject        = "Project root (default: current directory)"
	MsgFlagWatchConflicts = "How to resolve conflicts while watching: auto (fail-fast), fail-fast, skip-all, force-overwrite"
	MsgFlagTargets        = "Targets to deploy to (overrides targets.enabled); files of other targets become orphans"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/deploy-long.txt
	msgDeployLongRaw string
	MsgDeployLong    = strings.TrimSpace(msgDeployLongRaw)

	//go:embed msgs/deploy-example.txt
	msgDeployExampleRaw string
	MsgDeployExample    = strings.TrimRight(msgDeployExampleRaw, "\n")

	//go:embed msgs/diff-long.txt
	msgDiffLongRaw string
	MsgDiffLong    = strings.TrimSpace(msgDiffLongRaw)

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/migrate-long.txt
	msgMigrateLongRaw string
	MsgMigrateLong    = strings.TrimSpace(msgMigrateLongRaw)

	//go:embed msgs/migrate-refused.txt
	msgMigrateRefusedRaw string
	MsgMigrateRefused    = strings.TrimSpace(msgMigrateRefusedRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
