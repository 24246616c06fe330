package approval

import "context"

// AutoGate approves every request immediately. It is the default variant
// (§4.6) for unattended runs.
type AutoGate struct{}

// RequestApproval always returns Approve without blocking.
func (AutoGate) RequestApproval(ctx context.Context, req Request) (Outcome, error) {
	return Outcome{Decision: Approve}, nil
}
