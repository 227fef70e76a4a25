// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package logging

import (
	"flag"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

var loglevel *int

// InitParam registers the -loglevel flag. Call before flag.Parse.
func InitParam() {
	loglevel = flag.Int("loglevel", int(logrus.InfoLevel), "log level, 0 (panic) to 6 (trace)")
}

// GetLogger returns a logger at level, or at the -loglevel flag value when
// InitParam was called.
func GetLogger(level logrus.Level) *logrus.Entry {
	logger := logrus.New()
	if loglevel == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.Level(*loglevel))
	}
	f := new(prefixed.TextFormatter)
	f.TimestampFormat = "2006-01-02 15:04:05.000"
	f.FullTimestamp = true
	logger.SetFormatter(f)
	return logrus.NewEntry(logger)
}

// For returns a child of log tagged with component as its prefix.
func For(log *logrus.Entry, component string) *logrus.Entry {
	return log.WithField("prefix", component)
}
