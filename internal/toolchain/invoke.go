package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// InvocationError reports a toolchain process that exited nonzero or could
// not be spawned, carrying the captured output so the caller can surface it.
type InvocationError struct {
	Command string
	Output  string
	Err     error
}

func (e *InvocationError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v\n%s", e.Command, e.Err, strings.TrimRight(e.Output, "\n"))
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// run invokes one external tool and waits for it. Stdout and stderr are
// captured together and only surfaced on failure.
func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &InvocationError{
			Command: name + " " + strings.Join(args, " "),
			Output:  string(out),
			Err:     err,
		}
	}
	return nil
}
