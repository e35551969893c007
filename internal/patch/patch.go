// Package patch applies hand-tuned corrections to converted camera frames.
package patch

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/imo2vmd/internal/transform"
)

var ErrInvalidRule = errors.New("invalid patch rule")

// Rule shortens the camera distance by Offset for frames strictly between
// From and To.
type Rule struct {
	From   uint64  `yaml:"from"`
	To     uint64  `yaml:"to"`
	Offset float64 `yaml:"offset"`
}

func (r Rule) String() string {
	return fmt.Sprintf("(%d, %d) -%g", r.From, r.To, r.Offset)
}

// Contains reports whether frame lies inside the rule's open range.
func (r Rule) Contains(frame uint64) bool {
	return frame > r.From && frame < r.To
}

func (r Rule) Validate() error {
	if r.To <= r.From+1 {
		return fmt.Errorf("%w %s: range is empty", ErrInvalidRule, r)
	}
	if math.IsNaN(r.Offset) || math.IsInf(r.Offset, 0) {
		return fmt.Errorf("%w %s: offset is not finite", ErrInvalidRule, r)
	}
	return nil
}

// Set is an ordered list of rules. A frame is changed by the first rule that
// contains it.
type Set []Rule

func (s Set) Validate() error {
	for i, r := range s {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

// Apply rewrites cams in place and returns how many frames were changed.
func (s Set) Apply(cams []transform.Camera) int {
	if len(s) == 0 {
		return 0
	}
	changed := 0
	for i := range cams {
		for _, r := range s {
			if r.Contains(cams[i].Frame) {
				cams[i].Distance -= r.Offset
				changed++
				break
			}
		}
	}
	return changed
}
