// Package config handles configuration management for calvin.
// Values are layered: embedded defaults, then the project's .calvin.toml,
// then CALVIN_* environment variables. Command-line flags are applied on
// top by the CLI.
package config
