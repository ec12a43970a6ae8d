// Package utils exposes reusable helpers consumed by every depctl command.
//
// ConfigurationLoader layers embedded defaults, an optional configuration file
// and DEPCTL_ environment variables through Viper. LoggerFactory builds the
// zap loggers that write diagnostics to stderr, keeping stdout free for reports.
package utils
