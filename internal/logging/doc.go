// Package logging provides the leveled logging used across the media
// player service.
//
// Package-level printf helpers (Debug, Info, Warn, Error, Fatal) write
// through a shared logrus logger. Components that want structured context
// use WithField or WithFields:
//
//	log := logging.WithField("component", "rotation")
//	log.WithField("angle", 90).Debug("auto-rotated portrait video")
//
// Settings come from the environment on first use: LOG_LEVEL (debug, info,
// warn, error), DEBUG=true to force debug, and LOG_FORMAT=json for
// machine-readable output.
package logging
