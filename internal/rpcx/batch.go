// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package rpcx

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FanOut issues fn once per item concurrently, bounded by concurrency
// in-flight goroutines, and returns the results in the same order as items.
// The Client each fn closes over already admission-controls the wire (see
// Client.acquire), so concurrency here governs how many goroutines queue up
// waiting for a wire slot, not how many requests actually land at once;
// callers typically pass the same bound they dialed the Client with.
//
// The first error from any item cancels the group's context and aborts the
// remaining items; FanOut returns that error and a nil result slice, since
// a partial result set would silently corrupt a downstream proof or diff.
func FanOut[T, R any](ctx context.Context, concurrency int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if concurrency <= 0 {
		concurrency = len(items)
	}
	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FanOutEach is FanOut without a return value, for operations invoked only
// for their side effects (e.g. submitting a page of proofs).
func FanOutEach[T any](ctx context.Context, concurrency int, items []T, fn func(ctx context.Context, item T) error) error {
	_, err := FanOut(ctx, concurrency, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}
