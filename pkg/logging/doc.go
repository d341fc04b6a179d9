// Package logging configures log/slog for restkit.
//
// Components accept a *slog.Logger and fall back to Nop() when none is
// given. The CLI builds the root logger from the configured level and format:
//
//	log := logging.FromStrings("debug", "json", os.Stderr)
//	log.Info("server started", "port", 3000)
//
// Levels are debug, info, warn and error. Formats are text (the default) and
// json.
package logging
