// Package mocks provides test doubles for the database package.
package mocks

import (
	"context"
	"sync/atomic"
)

// TxManager runs fn inline, without a real transaction, and counts calls.
// When Err is set, fn is not run and Err is returned.
type TxManager struct {
	Err   error
	calls atomic.Int32
}

// WithTx implements database.TxManager.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls.Add(1)
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}

// Calls returns how many times WithTx ran.
func (m *TxManager) Calls() int {
	return int(m.calls.Load())
}
