// Package logger builds structured slog loggers with environment presets
// and provides nil-safe attribute helpers for common fields.
//
// The factory covers the two usual setups:
//
//	// Development: text format, debug level
//	log := logger.New(logger.WithDevelopment("authkit"))
//
//	// Production: JSON format, info level
//	log := logger.New(logger.WithProduction("authkit"))
//
// Attribute helpers return an empty slog.Attr for zero values, so they can
// be passed unconditionally:
//
//	log.Info("session created",
//		logger.SessionID(sess.ID),
//		logger.UserID(userID.String()),
//		logger.Error(err), // dropped when err is nil
//	)
package logger
