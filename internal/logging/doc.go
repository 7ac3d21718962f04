// Package logging provides structured logging for lightstack.
//
// This package wraps zap with a silent-by-default global logger and a few
// helpers for the Home Assistant connection.
//
// # Log Levels
//
//   - Debug: websocket frames (tokens masked), hit-test results, calibration passes
//   - Info: connections, service calls, config reloads
//   - Warn: failed service calls, dropped actions, reconnects
//   - Error: handler panics, fatal startup problems
//
// # Configuration
//
// Logging is off unless a level is given on the command line or through
// LIGHTSTACK_LOG_LEVEL. The dashboard draws on the terminal, so point the
// output at a file when running it:
//
//	if err := logging.InitializeWith(logging.Options{Level: "debug", File: "/tmp/lightstack.log"}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Packages receive a *zap.Logger explicitly, derived from the global one:
//
//	client.Logger = logging.GetLogger().Named("hass")
//
// # Specialized Logging
//
//	logging.LogWebSocketMessage(l, url, "sent", websocket.TextMessage, payload)
//	logging.LogServiceCall(l, "light", "turn_on", data, target, err)
package logging
