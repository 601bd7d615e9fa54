package dice

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrOverflow reports a roll or bound that exceeds the int64 range.
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrDivideByZero reports division by zero during evaluation.
	ErrDivideByZero = errors.New("division by zero")

	// ErrDivisorSpansZero reports a division whose right side could be zero,
	// which makes the quotient unbounded.
	ErrDivisorSpansZero = errors.New("divisor range includes zero")
)

// Bounds returns the value range of a single die.
func (d Die) Bounds() (lo, hi int64, err error) {
	switch d.Kind {
	case KindNumber:
		return 1, int64(d.Faces), nil
	case KindFudge:
		return -1, 1, nil
	case KindMultiply:
		hi, ok := mulChecked(int64(d.Faces), int64(d.Faces))
		if !ok {
			return 0, 0, fmt.Errorf("%w in bounds of d%s", ErrOverflow, d)
		}
		return 1, hi, nil
	default:
		return 0, 0, fmt.Errorf("unknown die kind %d", d.Kind)
	}
}

// Bounds returns the total range of the whole dice group.
func (d Dice) Bounds() (lo, hi int64, err error) {
	dlo, dhi, err := d.Die.Bounds()
	if err != nil {
		return 0, 0, err
	}
	throws := int64(d.Throws)
	lo, okLo := mulChecked(throws, dlo)
	hi, okHi := mulChecked(throws, dhi)
	if !okLo || !okHi {
		return 0, 0, fmt.Errorf("%w in bounds of %s", ErrOverflow, d)
	}
	return lo, hi, nil
}

func (c Constant) Bounds() (int64, int64, error) {
	return int64(c), int64(c), nil
}

func (r *Roll) Bounds() (lo, hi int64, err error) {
	if r.Keep != nil {
		// a keep caps the kept dice, so the range is keep-count many dice
		dlo, dhi, derr := r.Dice.Die.Bounds()
		if derr != nil {
			return 0, 0, derr
		}
		n := int64(r.Keep.Count)
		var okLo, okHi bool
		lo, okLo = mulChecked(n, dlo)
		hi, okHi = mulChecked(n, dhi)
		if !okLo || !okHi {
			return 0, 0, fmt.Errorf("%w in bounds of %s", ErrOverflow, r)
		}
	} else {
		lo, hi, err = r.Dice.Bounds()
		if err != nil {
			return 0, 0, err
		}
	}
	if r.Filter != nil {
		// a filter can drop every die, leaving an empty sum of zero
		if lo > 0 {
			lo = 0
		}
		if hi < 0 {
			hi = 0
		}
	}
	return lo, hi, nil
}

func (p *Paren) Bounds() (int64, int64, error) {
	return p.Term.Bounds()
}

func (b *Binary) Bounds() (lo, hi int64, err error) {
	llo, lhi, err := b.Left.Bounds()
	if err != nil {
		return 0, 0, err
	}
	rlo, rhi, err := b.Right.Bounds()
	if err != nil {
		return 0, 0, err
	}

	switch b.Op {
	case OpAdd:
		lo, okLo := addChecked(llo, rlo)
		hi, okHi := addChecked(lhi, rhi)
		if !okLo || !okHi {
			return 0, 0, fmt.Errorf("%w in bounds of %s", ErrOverflow, b)
		}
		return lo, hi, nil

	case OpSub:
		lo, okLo := subChecked(llo, rhi)
		hi, okHi := subChecked(lhi, rlo)
		if !okLo || !okHi {
			return 0, 0, fmt.Errorf("%w in bounds of %s", ErrOverflow, b)
		}
		return lo, hi, nil

	case OpMul:
		corners := [4][2]int64{{llo, rlo}, {llo, rhi}, {lhi, rlo}, {lhi, rhi}}
		values := make([]int64, 0, 4)
		for _, c := range corners {
			v, ok := mulChecked(c[0], c[1])
			if !ok {
				return 0, 0, fmt.Errorf("%w in bounds of %s", ErrOverflow, b)
			}
			values = append(values, v)
		}
		return slices.Min(values), slices.Max(values), nil

	case OpDiv:
		if rlo <= 0 && rhi >= 0 {
			return 0, 0, fmt.Errorf("%w: %s", ErrDivisorSpansZero, b)
		}
		// with the divisor range on one side of zero the quotient extremes
		// sit on the corners
		corners := [4][2]int64{{llo, rlo}, {llo, rhi}, {lhi, rlo}, {lhi, rhi}}
		values := make([]int64, 0, 4)
		for _, c := range corners {
			v, ok := divChecked(c[0], c[1])
			if !ok {
				return 0, 0, fmt.Errorf("%w in bounds of %s", ErrOverflow, b)
			}
			values = append(values, v)
		}
		return slices.Min(values), slices.Max(values), nil

	default:
		return 0, 0, fmt.Errorf("unknown operator %d", b.Op)
	}
}

// Bounds returns the range of a single evaluation of the expression's term.
func (e *Expression) Bounds() (lo, hi int64, err error) {
	return e.Term.Bounds()
}

// DieRange returns the union of the face ranges of every die in the term.
// ok is false when the term contains no dice at all.
func DieRange(t Term) (lo, hi int64, ok bool, err error) {
	dies := DiceIn(t)
	if len(dies) == 0 {
		return 0, 0, false, nil
	}
	lo, hi = math.MaxInt64, math.MinInt64
	for _, d := range dies {
		dlo, dhi, derr := d.Bounds()
		if derr != nil {
			return 0, 0, false, derr
		}
		lo = min(lo, dlo)
		hi = max(hi, dhi)
	}
	return lo, hi, true, nil
}

func addChecked(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func subChecked(a, b int64) (int64, bool) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return a - b, true
}

func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	// the quotient check below wraps for these two, test them directly
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	if c/a != b {
		return 0, false
	}
	return c, true
}

func divChecked(a, b int64) (int64, bool) {
	if b == 0 || (a == math.MinInt64 && b == -1) {
		return 0, false
	}
	return a / b, true
}
