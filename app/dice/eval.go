package dice

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

func (c Constant) Eval(context.Context, *rand.Rand) (Result, error) {
	return Result{Total: int64(c)}, nil
}

func (p *Paren) Eval(ctx context.Context, rng *rand.Rand) (Result, error) {
	return p.Term.Eval(ctx, rng)
}

func (r *Roll) Eval(ctx context.Context, rng *rand.Rand) (Result, error) {
	kept, raw, err := r.Dice.roll(ctx, rng)
	if err != nil {
		return Result{}, err
	}
	if r.Filter != nil {
		kept = r.Filter.apply(kept)
	}
	if r.Keep != nil {
		kept = r.Keep.apply(kept)
	}
	var total int64
	for _, v := range kept {
		total += v
	}
	return Result{Total: total, Faces: raw}, nil
}

func (b *Binary) Eval(ctx context.Context, rng *rand.Rand) (Result, error) {
	left, err := b.Left.Eval(ctx, rng)
	if err != nil {
		return Result{}, err
	}
	right, err := b.Right.Eval(ctx, rng)
	if err != nil {
		return Result{}, err
	}

	var total int64
	var ok bool
	switch b.Op {
	case OpAdd:
		total, ok = addChecked(left.Total, right.Total)
	case OpSub:
		total, ok = subChecked(left.Total, right.Total)
	case OpMul:
		total, ok = mulChecked(left.Total, right.Total)
	case OpDiv:
		// MinInt64 / -1 overflows; treat it like the zero divisor
		if right.Total == 0 || (left.Total == math.MinInt64 && right.Total == -1) {
			return Result{}, fmt.Errorf("%w in %s", ErrDivideByZero, b)
		}
		total, ok = left.Total/right.Total, true
	default:
		return Result{}, fmt.Errorf("unknown operator %d", b.Op)
	}
	if !ok {
		return Result{}, fmt.Errorf("%w in %s", ErrOverflow, b)
	}
	return Result{Total: total, Faces: append(left.Faces, right.Faces...)}, nil
}

// Eval rolls the expression: once for a bare term, Count times for a list.
func (e *Expression) Eval(ctx context.Context, rng *rand.Rand) ([]Result, error) {
	n := int(e.Count)
	if n == 0 {
		n = 1
	}
	results := make([]Result, 0, n)
	for range n {
		r, err := e.Term.Eval(ctx, rng)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// roll throws the whole group. It returns the faces twice: kept is what the
// filter and keep steps whittle down, raw stays complete for the throw
// histogram.
func (d Dice) roll(ctx context.Context, rng *rand.Rand) (kept, raw []int64, err error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	rolls := make([]int64, 0, d.Throws)
	for i := uint32(0); i < d.Throws; i++ {
		// check for cancellation every 256 throws
		if i%256 == 255 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			default:
			}
		}
		v, err := d.Die.roll(rng)
		if err != nil {
			return nil, nil, err
		}
		rolls = append(rolls, v)
	}
	return rolls, slices.Clone(rolls), nil
}

func (d Die) roll(rng *rand.Rand) (int64, error) {
	switch d.Kind {
	case KindNumber:
		return rng.Int64N(int64(d.Faces)) + 1, nil
	case KindFudge:
		return rng.Int64N(3) - 1, nil
	case KindMultiply:
		n := int64(d.Faces)
		v, ok := mulChecked(rng.Int64N(n)+1, rng.Int64N(n)+1)
		if !ok {
			return 0, fmt.Errorf("%w rolling d%s", ErrOverflow, d)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("unknown die kind %d", d.Kind)
	}
}

func (f *Filter) apply(rolls []int64) []int64 {
	target := int64(f.Target)
	out := rolls[:0]
	for _, v := range rolls {
		if f.Op.keeps(v, target) {
			out = append(out, v)
		}
	}
	return out
}

func (op FilterOp) keeps(v, target int64) bool {
	switch op {
	case FilterBigger:
		return v > target
	case FilterBiggerEq:
		// ties are dropped here too, same as FilterBigger
		return v > target
	case FilterSmaller:
		return v < target
	case FilterSmallerEq:
		return v <= target
	case FilterNotEq:
		return v != target
	default:
		return false
	}
}

// apply keeps the count highest or lowest rolls. With count or fewer rolls
// they all pass through, in throw order.
func (k *Keep) apply(rolls []int64) []int64 {
	n := int(k.Count)
	if len(rolls) <= n {
		return rolls
	}
	slices.Sort(rolls)
	if k.Mode == KeepHigher {
		return rolls[len(rolls)-n:]
	}
	return rolls[:n]
}
