package validation

import "errors"

// ErrNoViolations is returned by SynthesizeError for an empty list.
var ErrNoViolations = errors.New("no violations to report")

// SynthesizeError turns the findings of one scan into the single error to
// raise. One violation maps straight to its kind's error; more than one is
// wrapped in a ValidationError quoting the first record after ordering.
//
// The ordering is the comparator
//
//	cmp(l, r) = l.Count != r.Count ? r.Kind - l.Kind : 0
//
// applied by a stable hybrid sort (run detection plus binary insertion, the
// way JavaScript engines sort short arrays). The comparator is not a total
// order, so the chosen example depends on the algorithm as much as on the
// data. violations is not modified.
func SynthesizeError(violations []Violation) error {
	if len(violations) == 0 {
		return ErrNoViolations
	}

	sorted := make([]Violation, len(violations))
	copy(sorted, violations)
	timSort(sorted, compareViolations)

	first := sorted[0].Err()
	if len(violations) == 1 {
		return first
	}
	return &ValidationError{Example: first, Violations: len(violations)}
}

func compareViolations(l, r Violation) int {
	if l.Count-r.Count != 0 {
		return r.Kind.Rank() - l.Kind.Rank()
	}
	return 0
}

const minMerge = 64

// timSort sorts a in place. Arrays shorter than minMerge form a single run
// and reproduce the engine's comparison sequence exactly. Longer arrays are
// split into runs the same way but merged without galloping.
func timSort(a []Violation, cmp func(l, r Violation) int) {
	n := len(a)
	if n < 2 {
		return
	}

	minRun := minRunLength(n)
	var runs [][2]int
	for low := 0; low < n; {
		runLen := countAndMakeRun(a, low, n, cmp)
		if runLen < minRun {
			forced := min(minRun, n-low)
			binaryInsertionSort(a, low, low+runLen, low+forced, cmp)
			runLen = forced
		}
		runs = append(runs, [2]int{low, low + runLen})
		low += runLen
	}

	for len(runs) > 1 {
		merged := runs[:0:0]
		for i := 0; i+1 < len(runs); i += 2 {
			mergeRuns(a, runs[i][0], runs[i][1], runs[i+1][1], cmp)
			merged = append(merged, [2]int{runs[i][0], runs[i+1][1]})
		}
		if len(runs)%2 == 1 {
			merged = append(merged, runs[len(runs)-1])
		}
		runs = merged
	}
}

func minRunLength(n int) int {
	r := 0
	for n >= minMerge {
		r |= n & 1
		n >>= 1
	}
	return n + r
}

// countAndMakeRun returns the length of the run starting at low, reversing
// it first when it is strictly descending.
func countAndMakeRun(a []Violation, low, high int, cmp func(l, r Violation) int) int {
	next := low + 1
	if next == high {
		return 1
	}

	runLen := 2
	descending := cmp(a[next], a[low]) < 0
	prev := a[next]
	for i := next + 1; i < high; i++ {
		order := cmp(a[i], prev)
		if descending {
			if order >= 0 {
				break
			}
		} else if order < 0 {
			break
		}
		prev = a[i]
		runLen++
	}

	if descending {
		for i, j := low, low+runLen-1; i < j; i, j = i+1, j-1 {
			a[i], a[j] = a[j], a[i]
		}
	}
	return runLen
}

// binaryInsertionSort extends the sorted prefix a[low:start] to a[low:high].
func binaryInsertionSort(a []Violation, low, start, high int, cmp func(l, r Violation) int) {
	if start == low {
		start++
	}
	for ; start < high; start++ {
		pivot := a[start]
		left, right := low, start
		for left < right {
			mid := left + (right-left)>>1
			if cmp(pivot, a[mid]) < 0 {
				right = mid
			} else {
				left = mid + 1
			}
		}
		copy(a[left+1:start+1], a[left:start])
		a[left] = pivot
	}
}

// mergeRuns stably merges a[lo:mid] and a[mid:hi]. A right element moves
// ahead only when it compares strictly less.
func mergeRuns(a []Violation, lo, mid, hi int, cmp func(l, r Violation) int) {
	left := append([]Violation(nil), a[lo:mid]...)
	i, j, k := 0, mid, lo
	for i < len(left) && j < hi {
		if cmp(a[j], left[i]) < 0 {
			a[k] = a[j]
			j++
		} else {
			a[k] = left[i]
			i++
		}
		k++
	}
	for i < len(left) {
		a[k] = left[i]
		i++
		k++
	}
}
