// Package logger provides the structured logging interface used across
// igapi.
//
// It wraps zerolog and adds:
//   - fields carried by derived loggers (WithField, WithFields, WithError)
//   - console or JSON line output, optionally mirrored to a file
//   - a process wide logger (Initialize / GetLogger)
//   - NewNopLogger and TestLogger for tests
//
// Usage:
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	log.WithField("username", "natgeo").Info("fetching profile")
package logger
