// Package logs reads the persistent muxsystem log file for the logs command.
package logs
