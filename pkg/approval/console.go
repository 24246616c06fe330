package approval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// ConsoleGate prompts an operator on in/out (normally os.Stdin/os.Stdout)
// for a decision. Reaching EOF on the input (e.g. a non-interactive run, a
// closed pipe) auto-approves rather than hanging forever, per §4.6.
type ConsoleGate struct {
	In  io.Reader
	Out io.Writer
}

// NewConsoleGate wires a ConsoleGate to the given reader/writer.
func NewConsoleGate(in io.Reader, out io.Writer) *ConsoleGate {
	return &ConsoleGate{In: in, Out: out}
}

// RequestApproval prints the request and reads one line of operator input.
// Accepted answers: "y"/"yes" -> Approve, "n"/"no"/"r"/"reject" -> Reject,
// "c"/"changes" -> RequestChanges, anything else -> Approve. EOF -> Approve
// (§4.6: a non-interactive run must not hang). A REJECT or REQUEST_CHANGES
// answer is followed by reading one more line as a free-text Reason, so an
// operator can explain the verdict; EOF on that second read simply leaves
// Reason empty.
func (g *ConsoleGate) RequestApproval(ctx context.Context, req Request) (Outcome, error) {
	outcomeCh := make(chan Outcome, 1)

	go func() {
		fmt.Fprintf(g.Out, "\n--- approval requested ---\n")
		fmt.Fprintf(g.Out, "document: %s\nphase:    %s\nsummary:  %s\n", req.DocumentID, req.Phase, req.Summary)
		fmt.Fprintf(g.Out, "approve? [y/n/r=reject/c=request changes]: ")

		scanner := bufio.NewScanner(g.In)
		if !scanner.Scan() {
			outcomeCh <- Outcome{Decision: Approve}
			return
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))

		var decision Decision
		switch answer {
		case "n", "no", "r", "reject":
			decision = Reject
		case "c", "changes":
			decision = RequestChanges
		default:
			outcomeCh <- Outcome{Decision: Approve}
			return
		}

		var reason string
		if scanner.Scan() {
			reason = strings.TrimSpace(scanner.Text())
		}
		outcomeCh <- Outcome{Decision: decision, Reason: reason}
	}()

	return waitWithTimeout(ctx, req, outcomeCh)
}
