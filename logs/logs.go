// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package logs provides the subsystem loggers shared by every package in
// the core: one four-letter tag per subsystem, all backed by a single
// rotating-file backend. Packages obtain their logger with MustGet during
// package init and never touch the backend directly.
package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Logger is the interface every subsystem logger satisfies.
type Logger = slog.Logger

// SubsystemTags enumerates the four-letter tag for each subsystem logger.
var SubsystemTags = struct {
	CRYP, // crypto primitives
	TXNS, // transaction model
	MPOL, // mempool
	BLKC, // block / merkle
	CHAN string // blockchain engine
}{
	CRYP: "CRYP",
	TXNS: "TXNS",
	MPOL: "MPOL",
	BLKC: "BLKC",
	CHAN: "CHAN",
}

var (
	backend = slog.NewBackend(logWriter{})

	subsystemLoggers = map[string]slog.Logger{
		SubsystemTags.CRYP: backend.Logger(SubsystemTags.CRYP),
		SubsystemTags.TXNS: backend.Logger(SubsystemTags.TXNS),
		SubsystemTags.MPOL: backend.Logger(SubsystemTags.MPOL),
		SubsystemTags.BLKC: backend.Logger(SubsystemTags.BLKC),
		SubsystemTags.CHAN: backend.Logger(SubsystemTags.CHAN),
	}

	// fileRotator is nil until InitLogRotator is called, so logging works
	// (to stdout only) before and during embedder startup.
	fileRotator *rotator.Rotator
)

// logWriter writes to stdout and, once initialized, to the rotating log
// file at the same time.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if fileRotator != nil {
		fileRotator.Write(p)
	}
	return len(p), nil
}

// InitLogRotator initializes the rolling log file at logFile. It must be
// called at most once, early during embedder startup; logging works
// without it (stdout only).
func InitLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	fileRotator = r
	return nil
}

// Get returns the logger for subsystemTag, or an error if the tag is
// unknown.
func Get(subsystemTag string) (slog.Logger, error) {
	logger, ok := subsystemLoggers[subsystemTag]
	if !ok {
		return nil, fmt.Errorf("unknown logging subsystem %q", subsystemTag)
	}
	return logger, nil
}

// MustGet returns the logger for subsystemTag, registering it on demand
// if the tag is not one of SubsystemTags. Every package in the core
// calls this once, at init time, to obtain its own logger; it never
// fails.
func MustGet(subsystemTag string) slog.Logger {
	if logger, ok := subsystemLoggers[subsystemTag]; ok {
		return logger
	}
	logger := backend.Logger(subsystemTag)
	subsystemLoggers[subsystemTag] = logger
	return logger
}

// SetLevel sets the log level for a single subsystem. Invalid subsystems
// are ignored.
func SetLevel(subsystemTag, level string) {
	logger, ok := subsystemLoggers[subsystemTag]
	if !ok {
		return
	}
	lvl, _ := slog.LevelFromString(level)
	logger.SetLevel(lvl)
}

// SetLevels sets the log level for every subsystem logger.
func SetLevels(level string) {
	for tag := range subsystemLoggers {
		SetLevel(tag, level)
	}
}

var _ io.Writer = logWriter{}
