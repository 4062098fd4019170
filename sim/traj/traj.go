// Package traj writes simulation output artifacts: an xyz coordinate
// trajectory appended batch by batch, and a VMD visualization script emitted
// once at startup.
package traj

import (
	"bufio"
	"fmt"
	"os"

	"github.com/drozzy/vmmc/sim"
)

// Writer appends configuration frames to an xyz trajectory file.
type Writer struct {
	path string
}

// NewWriter creates a trajectory writer for the given path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the trajectory file path.
func (w *Writer) Path() string { return w.path }

// AppendFrame appends one frame of particle coordinates. The first frame
// truncates (or creates) the file; later frames append. Two-dimensional
// configurations are written with z = 0 so standard xyz tooling accepts
// them.
func (w *Writer) AppendFrame(dimension int, store *sim.ParticleStore, first bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if first {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(w.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening trajectory: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	fmt.Fprintf(buf, "%d\n\n", store.Len())
	for i := 0; i < store.Len(); i++ {
		p := store.Get(i)
		z := 0.0
		if dimension == 3 {
			z = p.Position[2]
		}
		fmt.Fprintf(buf, "0 %5.4f %5.4f %5.4f\n", p.Position[0], p.Position[1], z)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing trajectory frame: %w", err)
	}
	return nil
}

// VMDScript writes a companion VMD Tcl script that loads the trajectory,
// draws particles at the hard-core radius, and frames the periodic box.
func VMDScript(boxSize []float64, trajectoryPath, scriptPath string) error {
	f, err := os.Create(scriptPath)
	if err != nil {
		return fmt.Errorf("creating vmd script: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	fmt.Fprintln(buf, "light 0 on")
	fmt.Fprintln(buf, "light 1 on")
	fmt.Fprintln(buf, "light 2 off")
	fmt.Fprintln(buf, "light 3 off")
	fmt.Fprintln(buf, "axes location off")
	fmt.Fprintln(buf, "stage location off")
	fmt.Fprintln(buf, "display projection orthographic")
	fmt.Fprintf(buf, "mol load xyz %s\n", trajectoryPath)
	fmt.Fprintln(buf, "set sel [atomselect top all]")
	fmt.Fprintln(buf, "$sel set radius 0.5")
	fmt.Fprintln(buf, "mol modstyle 0 0 VDW 1 30")
	z := 0.0
	if len(boxSize) == 3 {
		z = boxSize[2]
	}
	fmt.Fprintf(buf, "pbc set {%5.4f %5.4f %5.4f} -all\n", boxSize[0], boxSize[1], z)
	fmt.Fprintln(buf, "pbc box")
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing vmd script: %w", err)
	}
	return nil
}
