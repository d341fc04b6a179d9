// Package cliconfig resolves the settings of the restkit CLI.
//
// Settings are layered with the following precedence (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables (RESTKIT_* prefix)
//  3. The configuration file (restkit.yaml, restkit.yml or restkit.json)
//  4. Default values
//
// The source of every resolved value is tracked for `restkit validate` and
// debug logging.
package cliconfig
