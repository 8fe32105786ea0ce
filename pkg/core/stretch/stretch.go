// Package stretch flags runs of consecutive working days that exceed the ward's limit.
//
// The check is advisory: it never blocks saving a schedule, it only reports the days
// an operator should review. Every call starts from scratch.
package stretch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// DefaultLimit is the shortest work stretch that is flagged
const DefaultLimit = 7

// ErrLengthMismatch is returned when a staff member's sequence does not cover the horizon
var ErrLengthMismatch = errors.New("shift sequence length does not match horizon")

// Options controls how sequences are scanned
type Options struct {
	// RestCodes count as days off. Defaults to model.DefaultRestCodes.
	RestCodes []model.ShiftCode

	// BlankIsWork counts blank codes as work days. By default they are rest.
	BlankIsWork bool

	// Limit is the stretch length at which every day of the stretch is flagged. Defaults to DefaultLimit.
	Limit int

	// CountLeadingStretch also flags a stretch that starts on the first day of the horizon.
	// Such a stretch has no observed rest day before it, so it is skipped by default.
	CountLeadingStretch bool
}

func (o Options) withDefaults() Options {
	if len(o.RestCodes) == 0 {
		o.RestCodes = model.DefaultRestCodes
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

func (o Options) restSet() map[model.ShiftCode]bool {
	rest := make(map[model.ShiftCode]bool, len(o.RestCodes)+1)
	if !o.BlankIsWork {
		rest[""] = true
	}
	for _, code := range o.RestCodes {
		rest[normalizeCode(code)] = true
	}
	return rest
}

func normalizeCode(code model.ShiftCode) model.ShiftCode {
	return model.ShiftCode(strings.ToUpper(strings.TrimSpace(string(code))))
}

// Validate returns the ascending day indices of seq that fall inside an over-long work stretch.
//
// A stretch runs from the first work day after a rest day up to the next rest day,
// or to the end of the horizon when no rest day follows.
func Validate(seq []model.ShiftCode, opts Options) []int {
	opts = opts.withDefaults()
	return scan(seq, opts, opts.restSet())
}

func scan(seq []model.ShiftCode, opts Options, rest map[model.ShiftCode]bool) []int {
	flagged := []int{}

	// start of the current work stretch, -1 while resting
	start := -1

	closeStretch := func(end int) {
		if start < 0 {
			return
		}
		if (start > 0 || opts.CountLeadingStretch) && end-start >= opts.Limit {
			for i := start; i < end; i++ {
				flagged = append(flagged, i)
			}
		}
		start = -1
	}

	for i, code := range seq {
		if rest[normalizeCode(code)] {
			closeStretch(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	closeStretch(len(seq))

	return flagged
}

// Stretches groups flagged day indices into contiguous windows
func Stretches(staffID string, indices []int) []model.Stretch {
	var stretches []model.Stretch

	for _, index := range indices {
		if n := len(stretches); n > 0 && stretches[n-1].End == index-1 {
			stretches[n-1].End = index
			continue
		}
		stretches = append(stretches, model.Stretch{StaffID: staffID, Start: index, End: index})
	}

	return stretches
}

// ValidateRoster validates every staff member's sequence concurrently.
// Violations are returned ordered by staff id, then day index.
func ValidateRoster(ctx context.Context, roster map[string][]model.ShiftCode, horizonLen int, opts Options) ([]model.Violation, error) {
	staffIDs := make([]string, 0, len(roster))
	for staffID, seq := range roster {
		if len(seq) != horizonLen {
			return nil, fmt.Errorf("%w: staff %s has %d days, horizon has %d",
				ErrLengthMismatch, staffID, len(seq), horizonLen)
		}
		staffIDs = append(staffIDs, staffID)
	}
	sort.Strings(staffIDs)

	opts = opts.withDefaults()
	rest := opts.restSet()

	// each goroutine writes only its own slot
	results := make([][]int, len(staffIDs))

	g, ctx := errgroup.WithContext(ctx)
	for i, staffID := range staffIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = scan(roster[staffID], opts, rest)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to validate roster: %w", err)
	}

	violations := []model.Violation{}
	for i, staffID := range staffIDs {
		for _, dayIndex := range results[i] {
			violations = append(violations, model.Violation{StaffID: staffID, DayIndex: dayIndex})
		}
	}

	return violations, nil
}
