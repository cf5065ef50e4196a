package lattice

import (
	"log/slog"
	"strings"
)

// Constraint weights and the target CA-CA separation for biased pairs.
const (
	constraintWeight = 5.0
	alignmentWeight  = 2.0
	targetDistance   = 3.8
)

// directionVectors maps direction tokens to unit vectors on the 3-D lattice.
var directionVectors = map[string]Vec3{
	"R": {X: 1},  // right
	"L": {X: -1}, // left
	"U": {Y: 1},  // up
	"D": {Y: -1}, // down
	"F": {Z: 1},  // forward
	"B": {Z: -1}, // back
}

// Constraint biases the displacement between two residues toward a target
// distance and, when a direction is given, toward that direction.
type Constraint struct {
	I, J   int
	Dir    Vec3
	HasDir bool
}

// energy is a harmonic penalty on the pair distance plus an alignment
// penalty that grows as the displacement turns away from Dir.
func (c Constraint) energy(coords []Vec3) float64 {
	disp := coords[c.J].Sub(coords[c.I])
	d := disp.Norm()
	dev := d - targetDistance
	e := constraintWeight * dev * dev
	if c.HasDir && d > 0 {
		cos := disp.Dot(c.Dir) / d
		e += alignmentWeight * (1 - cos)
	}
	return e
}

// DirectionalConstraints builds pairwise constraints between consecutive
// residues from the provided direction tokens. Unknown tokens are skipped
// with a warning, never an error; tokens beyond the chain end are ignored.
func DirectionalConstraints(p *Pose, directions []string, logger *slog.Logger) []Constraint {
	constraints := make([]Constraint, 0, len(directions))
	for i, token := range directions {
		j := i + 1
		if j >= p.Len() {
			continue
		}
		dir, ok := directionVectors[strings.ToUpper(token)]
		if !ok {
			logger.Warn("skipping unknown direction token", "token", token, "position", i)
			continue
		}
		constraints = append(constraints, Constraint{I: i, J: j, Dir: dir, HasDir: true})
	}
	return constraints
}
