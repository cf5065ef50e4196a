package lattice

import (
	"math"
	"math/rand"
)

// Monte Carlo parameters for the fold protocol.
const (
	foldTemperature = 2.0
	trialsPerRepeat = 100
	maxPerturbation = 0.5
)

// Relax parameters: rounds of greedy per-residue moves with a shrinking
// step size.
const (
	relaxIterations = 50
	relaxStep       = 0.3
	relaxStepDecay  = 0.95
)

// Relax iteratively minimizes the pose energy. Each repeat runs a fixed
// number of sweeps; in each sweep every residue is offered small axis-aligned
// moves and keeps any that lower the energy. Deterministic for a given pose.
func Relax(p *Pose, constraints []Constraint, repeats int) {
	for r := 0; r < repeats; r++ {
		step := relaxStep
		for iter := 0; iter < relaxIterations; iter++ {
			improved := false
			current := Energy(p, constraints)
			for i := range p.Coords {
				for _, delta := range axisMoves(step) {
					orig := p.Coords[i]
					p.Coords[i] = orig.Add(delta)
					if e := Energy(p, constraints); e < current {
						current = e
						improved = true
					} else {
						p.Coords[i] = orig
					}
				}
			}
			step *= relaxStepDecay
			if !improved {
				break
			}
		}
	}
}

// axisMoves returns the six axis-aligned displacement candidates.
func axisMoves(step float64) []Vec3 {
	return []Vec3{
		{X: step}, {X: -step},
		{Y: step}, {Y: -step},
		{Z: step}, {Z: -step},
	}
}

// Fold runs a Metropolis Monte Carlo search at a fixed temperature for
// repeats * trialsPerRepeat trial moves, then restores the lowest-energy
// coordinates seen.
func Fold(p *Pose, constraints []Constraint, repeats int, rng *rand.Rand) {
	current := Energy(p, constraints)
	best := current
	bestCoords := p.CopyCoords()

	trials := repeats * trialsPerRepeat
	for t := 0; t < trials; t++ {
		i := rng.Intn(p.Len())
		delta := Vec3{
			X: (rng.Float64()*2 - 1) * maxPerturbation,
			Y: (rng.Float64()*2 - 1) * maxPerturbation,
			Z: (rng.Float64()*2 - 1) * maxPerturbation,
		}

		orig := p.Coords[i]
		p.Coords[i] = orig.Add(delta)
		proposed := Energy(p, constraints)

		dE := proposed - current
		if dE <= 0 || rng.Float64() < math.Exp(-dE/foldTemperature) {
			current = proposed
			if current < best {
				best = current
				copy(bestCoords, p.Coords)
			}
		} else {
			p.Coords[i] = orig
		}
	}

	copy(p.Coords, bestCoords)
}
