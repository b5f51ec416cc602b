package pipeline

import (
	"slices"
)

// Permutations returns every ordering of values, generated with Heap's
// algorithm. The first permutation is values in their given order.
func Permutations(values []int64) (perms [][]int64) {
	work := slices.Clone(values)
	perms = append(perms, slices.Clone(work))

	c := make([]int, len(work))
	for i := 1; i < len(work); {
		if c[i] < i {
			if i%2 == 0 {
				work[0], work[i] = work[i], work[0]
			} else {
				work[c[i]], work[i] = work[i], work[c[i]]
			}
			perms = append(perms, slices.Clone(work))
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}

	return
}
