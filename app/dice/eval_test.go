package dice

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"
)

func newTestRoller() *rand.Rand {
	return NewSourceFromSeed([32]byte{42}).Roller()
}

func TestEvalConstantArithmetic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "addition", input: "1 + 2", want: 3},
		{name: "precedence", input: "2 + 3 * 4", want: 14},
		{name: "product before difference", input: "2 * 3 - 4", want: 2},
		{name: "subtraction associates left", input: "1 - 2 - 3", want: -4},
		{name: "division truncates", input: "7 / 2", want: 3},
		{name: "division truncates toward zero", input: "-7 / 2", want: -3},
		{name: "parens first", input: "(1 + 2) * 3", want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := ParseTerm(tt.input)
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			got, err := term.Eval(context.Background(), newTestRoller())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Total != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got.Total)
			}
			if len(got.Faces) != 0 {
				t.Errorf("expected no faces, got %v", got.Faces)
			}
		})
	}
}

func TestEvalArithmeticErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "division by zero", input: "1 / 0", want: ErrDivideByZero},
		{name: "minimum divided by minus one", input: "-9223372036854775808 / -1", want: ErrDivideByZero},
		{name: "addition overflow", input: "9223372036854775807 + 1", want: ErrOverflow},
		{name: "subtraction underflow", input: "-9223372036854775808 - 1", want: ErrOverflow},
		{name: "multiplication overflow", input: "9223372036854775807 * 2", want: ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := ParseTerm(tt.input)
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if _, err := term.Eval(context.Background(), newTestRoller()); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEvalSameSeedSameRolls(t *testing.T) {
	term, err := ParseTerm("3d6 + d20")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	run := func() []Result {
		source := NewSourceFromSeed([32]byte{7, 7, 7})
		results := make([]Result, 0, 20)
		for i := 0; i < 20; i++ {
			r, err := term.Eval(context.Background(), source.Roller())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			results = append(results, r)
		}
		return results
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results from the same seed, got %v and %v", first, second)
	}
}

func TestEvalDieRanges(t *testing.T) {
	t.Run("number die", func(t *testing.T) {
		term, err := ParseTerm("d6")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		roller := newTestRoller()
		seen := make(map[int64]bool)
		for i := 0; i < 1000; i++ {
			r, err := term.Eval(context.Background(), roller)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Total < 1 || r.Total > 6 {
				t.Fatalf("total %d out of range", r.Total)
			}
			seen[r.Total] = true
		}
		if len(seen) != 6 {
			t.Errorf("expected all 6 faces after 1000 rolls, saw %d", len(seen))
		}
	})

	t.Run("fudge die", func(t *testing.T) {
		term, err := ParseTerm("dF")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		roller := newTestRoller()
		seen := make(map[int64]bool)
		for i := 0; i < 1000; i++ {
			r, err := term.Eval(context.Background(), roller)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Total < -1 || r.Total > 1 {
				t.Fatalf("total %d out of range", r.Total)
			}
			seen[r.Total] = true
		}
		if len(seen) != 3 {
			t.Errorf("expected all 3 faces after 1000 rolls, saw %d", len(seen))
		}
	})

	t.Run("multiply die", func(t *testing.T) {
		term, err := ParseTerm("d4x")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		products := map[int64]bool{1: true, 2: true, 3: true, 4: true, 6: true, 8: true, 9: true, 12: true, 16: true}
		roller := newTestRoller()
		for i := 0; i < 400; i++ {
			r, err := term.Eval(context.Background(), roller)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !products[r.Total] {
				t.Fatalf("total %d is not a product of two d4 rolls", r.Total)
			}
		}
	})

	t.Run("dice group", func(t *testing.T) {
		term, err := ParseTerm("2d6")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		roller := newTestRoller()
		for i := 0; i < 400; i++ {
			r, err := term.Eval(context.Background(), roller)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Total < 2 || r.Total > 12 {
				t.Fatalf("total %d out of range", r.Total)
			}
			if len(r.Faces) != 2 {
				t.Fatalf("expected 2 faces, got %v", r.Faces)
			}
			for _, f := range r.Faces {
				if f < 1 || f > 6 {
					t.Fatalf("face %d out of range", f)
				}
			}
		}
	})
}

func TestEvalFilters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		keeps func(int64) bool
	}{
		{name: "bigger", input: "6d6>3", keeps: func(v int64) bool { return v > 3 }},
		{name: "bigger or equal drops ties", input: "6d6>=3", keeps: func(v int64) bool { return v > 3 }},
		{name: "smaller", input: "6d6<3", keeps: func(v int64) bool { return v < 3 }},
		{name: "smaller or equal", input: "6d6<=3", keeps: func(v int64) bool { return v <= 3 }},
		{name: "not equal", input: "6d6!=3", keeps: func(v int64) bool { return v != 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := ParseTerm(tt.input)
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			roller := newTestRoller()
			for i := 0; i < 100; i++ {
				r, err := term.Eval(context.Background(), roller)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(r.Faces) != 6 {
					t.Fatalf("expected all 6 raw faces, got %v", r.Faces)
				}
				var want int64
				for _, f := range r.Faces {
					if tt.keeps(f) {
						want += f
					}
				}
				if r.Total != want {
					t.Errorf("expected total %d for faces %v, got %d", want, r.Faces, r.Total)
				}
			}
		})
	}
}

func TestEvalKeep(t *testing.T) {
	t.Run("keep higher", func(t *testing.T) {
		term, err := ParseTerm("4d6k2")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		roller := newTestRoller()
		for i := 0; i < 200; i++ {
			r, err := term.Eval(context.Background(), roller)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(r.Faces) != 4 {
				t.Fatalf("expected 4 raw faces, got %v", r.Faces)
			}
			sorted := slices.Clone(r.Faces)
			slices.Sort(sorted)
			want := sorted[2] + sorted[3]
			if r.Total != want {
				t.Errorf("expected total %d for faces %v, got %d", want, r.Faces, r.Total)
			}
		}
	})

	t.Run("keep lower", func(t *testing.T) {
		term, err := ParseTerm("4d6l1")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		roller := newTestRoller()
		for i := 0; i < 200; i++ {
			r, err := term.Eval(context.Background(), roller)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := slices.Min(r.Faces); r.Total != want {
				t.Errorf("expected total %d for faces %v, got %d", want, r.Faces, r.Total)
			}
		}
	})

	t.Run("keep count beyond throws", func(t *testing.T) {
		term, err := ParseTerm("2d6k5")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		roller := newTestRoller()
		for i := 0; i < 100; i++ {
			r, err := term.Eval(context.Background(), roller)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := r.Faces[0] + r.Faces[1]; r.Total != want {
				t.Errorf("expected total %d for faces %v, got %d", want, r.Faces, r.Total)
			}
		}
	})

	t.Run("filter before keep", func(t *testing.T) {
		term, err := ParseTerm("6d6>2k2")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		roller := newTestRoller()
		for i := 0; i < 200; i++ {
			r, err := term.Eval(context.Background(), roller)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var filtered []int64
			for _, f := range r.Faces {
				if f > 2 {
					filtered = append(filtered, f)
				}
			}
			slices.Sort(filtered)
			if len(filtered) > 2 {
				filtered = filtered[len(filtered)-2:]
			}
			var want int64
			for _, f := range filtered {
				want += f
			}
			if r.Total != want {
				t.Errorf("expected total %d for faces %v, got %d", want, r.Faces, r.Total)
			}
		}
	})
}

func TestEvalExpressionLists(t *testing.T) {
	t.Run("bare term rolls once", func(t *testing.T) {
		expr, err := ParseExpression("d6")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		results, err := expr.Eval(context.Background(), newTestRoller())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 result, got %d", len(results))
		}
	})

	t.Run("counted list rolls count times", func(t *testing.T) {
		expr, err := ParseExpression("5{2d6}")
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		results, err := expr.Eval(context.Background(), newTestRoller())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 5 {
			t.Fatalf("expected 5 results, got %d", len(results))
		}
		for _, r := range results {
			if r.Total < 2 || r.Total > 12 {
				t.Errorf("total %d out of range", r.Total)
			}
		}
	})
}

func TestEvalCancelledContext(t *testing.T) {
	term, err := ParseTerm("1000d6")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := term.Eval(ctx, newTestRoller()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected %v, got %v", context.Canceled, err)
	}
}
