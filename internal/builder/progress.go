package builder

import (
	"fmt"
	"io"
	"sync"

	"github.com/gookit/color"
)

var verbStyle = color.Style{color.FgGreen, color.OpBold}

// progress renders the single-line compile/link status: a counter fading
// from red to green as the leaf's sources complete, followed by the package
// name and version. Purely observational; the build does not depend on it.
type progress struct {
	mu      sync.Mutex
	out     io.Writer
	name    string
	version string
}

func newProgress(out io.Writer, name, version string) *progress {
	return &progress{out: out, name: name, version: version}
}

// compiling is handed to the Compiler as its progress callback; it may be
// called from concurrent compile workers.
func (p *progress) compiling(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.line(counter(done, total), "Compiling:")
}

func (p *progress) linking(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.line(counter(total, total), "Linking:")
}

func (p *progress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out)
}

func (p *progress) line(counter, verb string) {
	fmt.Fprintf(p.out, "\r%60s", "")
	fmt.Fprintf(p.out, "\r%-13s %s %s v%s", counter, verbStyle.Render(verb), p.name, p.version)
}

func counter(done, total int) string {
	ratio := 1.0
	if total > 0 {
		ratio = float64(done) / float64(total)
	}
	red := uint8(255 * (1 - ratio))
	green := uint8(255 * ratio)
	return color.RGB(red, green, 0).Sprintf("[%d/%d]", done, total)
}
