// Package logger provides structured logging functionality for the invidious extractors.
//
// Features:
//   - Multiple log levels (TRACE, DEBUG, INFO, WARN, ERROR)
//   - Component-based filtering
//   - Multiple output formats (text, JSON, color)
//   - Thread-safe operations
//   - Configuration from file sections and INVIDIOUS_LOG_* variables
//
// Usage:
//
//	// Get a component logger
//	log := logger.WithComponent(logger.ComponentExtractor)
//
//	// Log messages with different levels
//	log.Warn("HTTP Error 502: Bad Gateway (retry 0/5)", map[string]interface{}{
//		"id": "BaW_jenozKc",
//	})
//
//	// Configure global logger
//	config := logger.DefaultConfig()
//	config.Level = logger.DEBUG
//	config.Format = logger.FormatJSON
//	logger.SetGlobalLogger(logger.New(config))
//
// Components:
//   - ComponentApp: CLI logs
//   - ComponentExtractor: video extraction and retry warnings
//   - ComponentPlaylist: playlist expansion
//   - ComponentAPI: Invidious API calls
//   - ComponentClient: HTTP transport
//   - ComponentFormat: format derivation
//   - ComponentServer: HTTP front-end
package logger
