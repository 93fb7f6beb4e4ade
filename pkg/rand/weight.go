package rand

import (
	mrand "math/rand"

	"github.com/jihwankim/covcrv/pkg/rand/solver"
)

// weightedChoice picks one solution among sols, weighted by the product of
// every distribution whose variables are fully covered by resolved+solution.
// Grounded in pkg/fuzz/sampler.go's weighted-choice distribution: cumulative
// weight, then one rng.Float64() draw locating the bucket.
func weightedChoice(rng *mrand.Rand, sols []solver.Assignment, resolved solver.Assignment, distributions []*distributionEntry) solver.Assignment {
	if len(sols) == 1 {
		return sols[0]
	}

	weights := make([]float64, len(sols))
	total := 0.0
	for i, s := range sols {
		merged := mergeAssignment(resolved, s)
		w := 1.0
		for _, d := range distributions {
			if coversAll(d.vars, merged) {
				if dw := d.weight(merged); dw > 0 {
					w *= dw
				} else {
					w = 0
				}
			}
		}
		weights[i] = w
		total += w
	}

	if total <= 0 {
		return sols[rng.Intn(len(sols))]
	}

	pick := rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if pick < cum {
			return sols[i]
		}
	}
	return sols[len(sols)-1]
}

func mergeAssignment(base, overlay solver.Assignment) solver.Assignment {
	merged := make(solver.Assignment, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

func coversAll(vars []string, a solver.Assignment) bool {
	for _, v := range vars {
		if _, ok := a[v]; !ok {
			return false
		}
	}
	return true
}
