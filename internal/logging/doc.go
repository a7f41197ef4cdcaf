// Package logging provides structured logging for taskfetch.
//
// [Logger] wraps log/slog with a JSON handler. Child loggers carry persistent
// attributes so every line emitted by the network layer names the endpoint it
// belongs to:
//
//	logger, err := logging.NewLogger(dataDir, "INFO", logging.DefaultRotationConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	netLog := logger.WithComponent("network").WithEndpoint("nextpath")
//	netLog.Warn("attempt failed", "attempt", 1, "kind", "timeout")
//
// Output:
//
//	{"time":"...","level":"WARN","msg":"attempt failed","component":"network","endpoint":"nextpath","attempt":1,"kind":"timeout"}
//
// Log files are rotated by [RotatingWriter] once they exceed MaxSizeMB;
// rotated files are named debug.log.1 (newest) through debug.log.N.
//
// Tests use [NopLogger].
package logging
