package revalidate

import "context"

// Manager is the change-notification collaborator: after a mutation the core
// names the logical view path that changed and the collaborator invalidates
// whatever it cached for it. Invalidation is advisory; failures must not fail
// the mutation that triggered them.
type Manager interface {
	Invalidate(ctx context.Context, path string)
}
