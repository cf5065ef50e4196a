package lattice

import "fmt"

// BondLength is the target CA-CA distance between consecutive residues, in
// angstroms.
const BondLength = 3.8

// Vec3 is a point or direction in 3-D space.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return sqrt(v.Dot(v))
}

// residueNames maps one-letter amino acid codes to PDB residue names.
var residueNames = map[byte]string{
	'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS",
	'E': "GLU", 'Q': "GLN", 'G': "GLY", 'H': "HIS", 'I': "ILE",
	'L': "LEU", 'K': "LYS", 'M': "MET", 'F': "PHE", 'P': "PRO",
	'S': "SER", 'T': "THR", 'W': "TRP", 'Y': "TYR", 'V': "VAL",
}

// Pose is a coarse-grained chain model: one CA position per residue.
type Pose struct {
	Names  []string
	Coords []Vec3
}

// NewPose builds an extended chain from a one-letter sequence, with
// consecutive residues spaced at BondLength along the x axis.
func NewPose(sequence string) (*Pose, error) {
	if sequence == "" {
		return nil, fmt.Errorf("empty sequence")
	}
	p := &Pose{
		Names:  make([]string, 0, len(sequence)),
		Coords: make([]Vec3, 0, len(sequence)),
	}
	for i := 0; i < len(sequence); i++ {
		name, ok := residueNames[sequence[i]]
		if !ok {
			return nil, fmt.Errorf("unknown residue %q at position %d", string(sequence[i]), i+1)
		}
		p.Names = append(p.Names, name)
		p.Coords = append(p.Coords, Vec3{X: float64(i) * BondLength})
	}
	return p, nil
}

// Len returns the number of residues.
func (p *Pose) Len() int { return len(p.Coords) }

// CopyCoords returns an independent copy of the coordinate slice.
func (p *Pose) CopyCoords() []Vec3 {
	cp := make([]Vec3, len(p.Coords))
	copy(cp, p.Coords)
	return cp
}
