package trampoline

import (
	"math/big"
	"testing"

	"golang.org/x/sync/errgroup"
)

// TestConcurrentInterpretersAreIndependent drives many Interpreters in
// parallel goroutines with errgroup, one factorial(n) computation each,
// to exercise spec.md §5's guarantee: "If an embedding needs
// multi-threaded use it must instantiate one interpreter per thread" —
// nothing here is shared package-level state, so running N of these at
// once must be as safe as running one.
func TestConcurrentInterpretersAreIndependent(t *testing.T) {
	const workers = 32

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		n := int64(50 + w)
		g.Go(func() error {
			interp := New(1 << 16)
			root := NewLevel(nil)
			root.Executor = factorialExecutor(interp)
			root.Scratch = bigCell(big.NewInt(n))
			if err := interp.Push(root); err != nil {
				return err
			}
			result, err := interp.RunWithTopAsRoot()
			if err != nil {
				return err
			}
			if result.Kind != KindOut {
				t.Errorf("worker n=%d: expected KindOut, got %v", n, result.Kind)
			}
			want := big.NewInt(1)
			for i := int64(2); i <= n; i++ {
				want.Mul(want, big.NewInt(i))
			}
			if bigOf(root.Out).Cmp(want) != 0 {
				t.Errorf("worker n=%d: wrong factorial result", n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent interpreters: %v", err)
	}
}
