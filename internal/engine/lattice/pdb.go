package lattice

import (
	"bytes"
	"fmt"
)

// WritePDB serializes the pose as a CA-trace PDB file: one ATOM record per
// residue followed by TER and END.
func WritePDB(p *Pose) []byte {
	var buf bytes.Buffer
	serial := 0
	for i, c := range p.Coords {
		serial++
		fmt.Fprintf(&buf, "ATOM  %5d  CA  %-3s A%4d    %8.3f%8.3f%8.3f  1.00  0.00           C\n",
			serial, p.Names[i], i+1, c.X, c.Y, c.Z)
	}
	if n := p.Len(); n > 0 {
		fmt.Fprintf(&buf, "TER   %5d      %-3s A%4d\n", serial+1, p.Names[n-1], n)
	}
	buf.WriteString("END\n")
	return buf.Bytes()
}
