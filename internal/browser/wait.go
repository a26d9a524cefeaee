// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrTimeout is wrapped by every wait helper that gives up
var ErrTimeout = errors.New("timed out")

// PollInterval is the pause between two evaluations of a wait condition
var PollInterval = time.Second

// poll evaluates cond every interval until it holds, timeout passed or ctx is done.
// Errors from cond count as "not yet".
func poll(ctx context.Context, interval time.Duration, timeout time.Duration, what string, cond func() (bool, error)) error {
	var lastErr error
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(context.Context) (bool, error) {
		ok, err := cond()
		lastErr = err
		return err == nil && ok, nil
	})
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w", what, ctx.Err())
	case lastErr != nil:
		return fmt.Errorf("%s after %s: %w (last error: %v)", what, timeout, ErrTimeout, lastErr)
	default:
		return fmt.Errorf("%s after %s: %w", what, timeout, ErrTimeout)
	}
}

// WaitUntilItemPresent polls find until it returns an item. Errors from find count as "not yet".
func WaitUntilItemPresent[T any](ctx context.Context, timeout time.Duration, find func() (*T, error)) (*T, error) {
	var item *T
	err := poll(ctx, PollInterval, timeout, "item not present", func() (bool, error) {
		found, err := find()
		item = found
		return found != nil, err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// WaitUntilItemNotPresent polls find until it returns no item
func WaitUntilItemNotPresent[T any](ctx context.Context, timeout time.Duration, find func() (*T, error)) error {
	return poll(ctx, PollInterval, timeout, "item still present", func() (bool, error) {
		item, err := find()
		return item == nil, err
	})
}

// WaitUntilPropertyPresent polls get until it returns expected
func WaitUntilPropertyPresent(ctx context.Context, timeout time.Duration, expected int, get func() (int, error)) error {
	actual := -1
	err := poll(ctx, PollInterval, timeout, "property", func() (bool, error) {
		value, err := get()
		if err != nil {
			return false, err
		}
		actual = value
		return value == expected, nil
	})
	if errors.Is(err, ErrTimeout) {
		return fmt.Errorf("property is %d, expected %d after %s: %w", actual, expected, timeout, ErrTimeout)
	}
	return err
}

// WaitUntilCondition polls cond every interval until it holds
func WaitUntilCondition(ctx context.Context, timeout time.Duration, interval time.Duration, cond func() (bool, error)) error {
	return poll(ctx, interval, timeout, "condition not met", cond)
}
