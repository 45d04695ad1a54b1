// Package config manages the CLI configuration: ~/.codely-cli/subagent.yaml,
// CODELY_* environment variables and an optional .env file in the working
// directory. Values act as defaults for flags the user did not pass.
package config
