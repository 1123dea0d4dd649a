package database

import (
	"context"
	"time"
)

const (
	DefaultDBTimeout = 10 * time.Second
	LongDBTimeout    = 30 * time.Second
)

// NewContext creates a context with the default timeout for database
// operations.
//
//	ctx, cancel := database.NewContext()
//	defer cancel()
func NewContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultDBTimeout)
}

// NewLongContext creates a context for heavier operations such as
// persisting a large scan report.
func NewLongContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), LongDBTimeout)
}
