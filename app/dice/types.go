// Package dice parses and evaluates roll expressions like "4d6h3+2" or
// "3{2d10>5}". A term rolls numbered, fudge or multiplying dice, filters and
// keeps subsets of the rolled dice, and combines results with integer
// arithmetic. Bounds for any term are available without rolling it, which is
// what lets callers size count arrays ahead of a run.
package dice

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// DieKind selects how a single die produces its value.
type DieKind int

const (
	// KindNumber is a die with faces 1..N.
	KindNumber DieKind = iota
	// KindFudge is a die with faces -1, 0 and +1.
	KindFudge
	// KindMultiply is the product of two rolls of an N-faced die.
	KindMultiply
)

// Die is a single die. Faces is unused for fudge dice.
type Die struct {
	Kind  DieKind
	Faces uint32
}

// Dice is a group of identical dice thrown together.
type Dice struct {
	Throws uint32
	Die    Die
}

// FilterOp compares a rolled die against a filter target.
type FilterOp int

const (
	FilterBigger FilterOp = iota
	FilterBiggerEq
	FilterSmaller
	FilterSmallerEq
	FilterNotEq
)

// Filter drops rolled dice that do not match the comparison.
type Filter struct {
	Op     FilterOp
	Target uint32
}

// KeepMode selects which end of the sorted rolls a Keep retains.
type KeepMode int

const (
	KeepHigher KeepMode = iota
	KeepLower
)

// Keep retains the Count highest or lowest of the kept dice.
type Keep struct {
	Mode  KeepMode
	Count uint32
}

// Term is one node of a parsed roll expression. The concrete types are
// Constant, *Roll, *Binary and *Paren.
type Term interface {
	fmt.Stringer

	// Eval rolls the term once. The context interrupts long rolls.
	Eval(ctx context.Context, rng *rand.Rand) (Result, error)

	// Bounds returns the smallest and largest total the term can produce.
	Bounds() (lo, hi int64, err error)

	eachDie(f func(Die))
}

// Result is the outcome of evaluating a term once: the arithmetic total and
// the face shown by every die that was rolled, before filtering.
type Result struct {
	Total int64
	Faces []int64
}

// Constant is a literal integer term.
type Constant int64

// Roll is a dice group with optional filter and keep steps.
type Roll struct {
	Dice   Dice
	Filter *Filter
	Keep   *Keep
}

// Op is a binary arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

// Binary combines two terms with an arithmetic operator. Operators of equal
// precedence associate to the left.
type Binary struct {
	Left  Term
	Op    Op
	Right Term
}

// Paren is a parenthesized sub-term.
type Paren struct {
	Term Term
}

// Expression is a term rolled once, or N times for an "N{term}" list.
type Expression struct {
	// Count is 0 for a bare term, or the repeat count of an N{term} list.
	Count uint32
	Term  Term
}

// Labeled is an expression with its optional "# label" suffix. Label is
// empty when no label was given.
type Labeled struct {
	Expression Expression
	Label      string
}

// DiceIn returns every die appearing in the term, in parse order.
func DiceIn(t Term) []Die {
	var dies []Die
	t.eachDie(func(d Die) { dies = append(dies, d) })
	return dies
}

func (c Constant) eachDie(func(Die)) {}
func (r *Roll) eachDie(f func(Die))  { f(r.Dice.Die) }
func (p *Paren) eachDie(f func(Die)) { p.Term.eachDie(f) }
func (b *Binary) eachDie(f func(Die)) {
	b.Left.eachDie(f)
	b.Right.eachDie(f)
}

func (k DieKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindFudge:
		return "fudge"
	case KindMultiply:
		return "multiply"
	default:
		return "unknown"
	}
}

func (d Die) String() string {
	switch d.Kind {
	case KindFudge:
		return "F"
	case KindMultiply:
		return strconv.FormatUint(uint64(d.Faces), 10) + "x"
	default:
		return strconv.FormatUint(uint64(d.Faces), 10)
	}
}

func (d Dice) String() string {
	if d.Throws == 1 {
		return "d" + d.Die.String()
	}
	return strconv.FormatUint(uint64(d.Throws), 10) + "d" + d.Die.String()
}

func (op FilterOp) String() string {
	switch op {
	case FilterBigger:
		return ">"
	case FilterBiggerEq:
		return ">="
	case FilterSmaller:
		return "<"
	case FilterSmallerEq:
		return "<="
	case FilterNotEq:
		return "!="
	default:
		return "?"
	}
}

func (f Filter) String() string {
	return f.Op.String() + strconv.FormatUint(uint64(f.Target), 10)
}

func (m KeepMode) String() string {
	if m == KeepLower {
		return "l"
	}
	return "h"
}

func (k Keep) String() string {
	return k.Mode.String() + strconv.FormatUint(uint64(k.Count), 10)
}

func (c Constant) String() string { return strconv.FormatInt(int64(c), 10) }

func (r *Roll) String() string {
	var sb strings.Builder
	sb.WriteString(r.Dice.String())
	if r.Filter != nil {
		sb.WriteString(r.Filter.String())
	}
	if r.Keep != nil {
		sb.WriteString(r.Keep.String())
	}
	return sb.String()
}

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

func (b *Binary) String() string {
	return b.Left.String() + " " + b.Op.String() + " " + b.Right.String()
}

func (p *Paren) String() string { return "(" + p.Term.String() + ")" }

func (e *Expression) String() string {
	if e.Count == 0 {
		return e.Term.String()
	}
	return strconv.FormatUint(uint64(e.Count), 10) + "{" + e.Term.String() + "}"
}

func (l *Labeled) String() string {
	if l.Label == "" {
		return l.Expression.String()
	}
	return l.Expression.String() + " # " + l.Label
}
