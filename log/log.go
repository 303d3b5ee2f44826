// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log re-exports a no-op github.com/luxfi/log.Logger for
// components and tests that do not want to wire a real sink.
package log

import (
	"github.com/luxfi/log"
)

// NewNoOpLogger returns a logger that doesn't log anything.
func NewNoOpLogger() log.Logger {
	return log.NewNoOpLogger()
}
