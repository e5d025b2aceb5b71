package script

import (
	"errors"
	"fmt"

	"github.com/aretw0/stepwise/pkg/domain"
)

var (
	errRequired      = errors.New("is required")
	errDuplicateID   = errors.New("duplicate step id")
	errUnknownTarget = errors.New("unknown step")
	errExclusive     = errors.New("only one of jump_to, loop_while and repeat_while may be set")
	errNegativeDelay = errors.New("must not be negative")
	errWhenOnly      = errors.New("requires jump_to")
	errNoSteps       = errors.New("flow has no steps")
	errMissingUnit   = errors.New("duration needs a unit such as 500ms or 2s")
)

// Validate checks the flow and reports every problem at once. The returned
// error wraps ErrInvalidFlow and one *ValidationError per problem.
func (d *Definition) Validate() error {
	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFlow, errNoSteps)
	}

	var errs []error
	fail := func(step, field string, err error) {
		errs = append(errs, &ValidationError{Step: step, Field: field, Err: err})
	}

	ids := make(map[string]bool, len(d.Steps))
	for i, s := range d.Steps {
		name := s.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i)
			fail(name, "id", errRequired)
		} else if ids[s.ID] {
			fail(name, "id", errDuplicateID)
		}
		ids[s.ID] = true
	}

	for i, s := range d.Steps {
		name := s.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}

		flowKeys := 0
		for _, k := range []string{s.JumpTo, s.LoopWhile, s.RepeatWhile} {
			if k != "" {
				flowKeys++
			}
		}
		if flowKeys > 1 {
			fail(name, "", errExclusive)
		}

		switch {
		case s.JumpTo != "":
			if !ids[s.JumpTo] {
				fail(name, "jump_to", fmt.Errorf("%w %q", errUnknownTarget, s.JumpTo))
			}
			if s.When == "" {
				fail(name, "when", errRequired)
			}
		case s.When != "":
			fail(name, "when", errWhenOnly)
		}

		conditions := []struct{ field, expr string }{
			{"when", s.When},
			{"loop_while", s.LoopWhile},
			{"repeat_while", s.RepeatWhile},
		}
		for _, c := range conditions {
			if c.expr == "" {
				continue
			}
			if _, err := ParseCondition(c.expr); err != nil {
				fail(name, c.field, err)
			}
		}

		validateScreen(name, "", s.ScreenDef, fail)
		for j, member := range s.Group {
			validateScreen(name, fmt.Sprintf("group[%d].", j), member, fail)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFlow, errors.Join(errs...))
	}
	return nil
}

func validateScreen(step, prefix string, s ScreenDef, fail func(step, field string, err error)) {
	if !s.Back.Valid() {
		fail(step, prefix+"back", fmt.Errorf("%w: %v", domain.ErrUnknownBackBehavior, s.Back))
	}
	if s.AutoAdvance < 0 {
		fail(step, prefix+"auto_advance", errNegativeDelay)
	}
	for i, d := range s.Delayed {
		if d.After < 0 {
			fail(step, fmt.Sprintf("%sdelayed[%d].after", prefix, i), errNegativeDelay)
		}
	}
}
