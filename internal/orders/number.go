package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	orderNumberPrefix = "ORD"
	sequenceWidth     = 5
)

type numberSource interface {
	FindMaxOrderNumber(ctx context.Context, prefix string) (string, error)
}

// Allocator derives candidate order numbers of the form ORD-YYYYMMDD-NNNNN.
// The sequence restarts at 1 each UTC day and is read from the greatest
// existing number with today's prefix, so two concurrent allocations can hand
// out the same candidate. The unique index on order_number is the real
// guarantee; callers must retry through CommitWithRetry.
type Allocator struct {
	source numberSource
	now    func() time.Time
}

// NewAllocator builds an order number allocator. A nil clock defaults to
// time.Now.
func NewAllocator(source numberSource, now func() time.Time) (*Allocator, error) {
	if source == nil {
		return nil, fmt.Errorf("order number source required")
	}
	if now == nil {
		now = time.Now
	}
	return &Allocator{source: source, now: now}, nil
}

// Next returns the next candidate order number for today.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	prefix := DayPrefix(a.now())

	max, err := a.source.FindMaxOrderNumber(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("find max order number: %w", err)
	}

	seq := 1
	if max != "" {
		parsed, err := parseSequence(max, prefix)
		if err != nil {
			return "", err
		}
		seq = parsed + 1
	}

	return fmt.Sprintf("%s%0*d", prefix, sequenceWidth, seq), nil
}

// DayPrefix returns the order number prefix for the UTC calendar day of t,
// e.g. "ORD-20260831-".
func DayPrefix(t time.Time) string {
	return fmt.Sprintf("%s-%s-", orderNumberPrefix, t.UTC().Format("20060102"))
}

func parseSequence(orderNumber, prefix string) (int, error) {
	suffix := strings.TrimPrefix(orderNumber, prefix)
	if suffix == orderNumber {
		return 0, fmt.Errorf("order number %q does not carry prefix %q", orderNumber, prefix)
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("order number %q has non-numeric sequence: %w", orderNumber, err)
	}
	return seq, nil
}
