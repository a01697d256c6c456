// Package logging provides hostcfgd's structured logging via slog.
//
// The handler level is held in an slog.LevelVar so the SIGUSR2 handler can
// flip Info↔Debug at runtime without reinstalling the handler. An optional
// remote destination tees every record to a syslog daemon over UDP; this
// mirrors the daemon's supervised deployment where logs are collected on a
// management host.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"net/netip"
	"os"
)

var (
	level  slog.LevelVar
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))
)

// Setup installs the package logger writing to w. Debug selects the
// initial level; json selects JSON records over logfmt-style text.
func Setup(debug bool, json bool, w io.Writer) {
	if debug {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	opts := &slog.HandlerOptions{Level: &level}
	if json {
		logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(w, opts))
	}
}

// SetRemote tees all subsequent records to a syslog daemon at addr (UDP
// port 514), in addition to w. Called once at startup; a dial failure is a
// fatal startup error for the caller to act on.
func SetRemote(addr netip.Addr, json bool, w io.Writer) error {
	remote, err := syslog.Dial("udp", fmt.Sprintf("%s:514", addr), syslog.LOG_INFO|syslog.LOG_DAEMON, "hostcfgd")
	if err != nil {
		return fmt.Errorf("dialing syslog at %s: %w", addr, err)
	}
	out := io.MultiWriter(w, remote)
	opts := &slog.HandlerOptions{Level: &level}
	if json {
		logger = slog.New(slog.NewJSONHandler(out, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(out, opts))
	}
	return nil
}

// ToggleDebug flips the level between Info and Debug and returns the new
// level. Called from the diagnostic-toggle signal handler.
func ToggleDebug() slog.Level {
	if level.Level() == slog.LevelDebug {
		level.Set(slog.LevelInfo)
	} else {
		level.Set(slog.LevelDebug)
	}
	return level.Level()
}

// Level returns the current handler level.
func Level() slog.Level {
	return level.Level()
}

// Logger returns the package logger for components that carry their own
// *slog.Logger.
func Logger() *slog.Logger {
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}
