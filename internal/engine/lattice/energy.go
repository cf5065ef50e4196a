package lattice

import "math"

// Energy term weights. The absolute values are arbitrary; only relative
// magnitudes matter for move acceptance.
const (
	bondWeight      = 1.0
	repulsionWeight = 2.0
	repulsionRadius = 4.0
)

func sqrt(x float64) float64 { return math.Sqrt(x) }

// Energy evaluates the pose under the chain terms plus any directional
// constraints. Lower is better.
func Energy(p *Pose, constraints []Constraint) float64 {
	e := chainEnergy(p.Coords)
	for _, c := range constraints {
		e += c.energy(p.Coords)
	}
	return e
}

// chainEnergy is the base score: harmonic bonds between consecutive
// residues plus soft-sphere repulsion between non-bonded pairs.
func chainEnergy(coords []Vec3) float64 {
	var e float64
	for i := 0; i+1 < len(coords); i++ {
		d := coords[i+1].Sub(coords[i]).Norm()
		dev := d - BondLength
		e += bondWeight * dev * dev
	}
	for i := 0; i < len(coords); i++ {
		for j := i + 2; j < len(coords); j++ {
			d := coords[j].Sub(coords[i]).Norm()
			if d < repulsionRadius {
				overlap := repulsionRadius - d
				e += repulsionWeight * overlap * overlap
			}
		}
	}
	return e
}
