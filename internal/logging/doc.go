// Package logging provides structured logging for the shell using uber/zap.
//
// Two output modes:
//   - Production: JSON lines on stderr
//   - Development: colored console output (LOG_DEV=true)
//
// Each component receives its own named child logger:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	policyLog := logger.Component("policy")
//	policyLog.Info("decision", zap.String("url", u))
package logging
