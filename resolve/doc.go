// Package resolve maps selection-channel class keys to concrete grid rows.
//
// Row identity shifts as rows move from New to Existing: a selection made
// before a row was persisted addresses it by grid position, while one made
// afterward addresses it by backend identity. The resolver tolerates both by
// running an ordered set of matching strategies and taking the first hit:
//
//   - Exact: key equals the row's identity-form key (course|section|id-N)
//   - Positional: key equals the row's positional-form key (course|section|row-N)
//   - Fuzzy: course and section components match, trailing ref ignored
//
// An all-miss is not an error; the target row may simply not have loaded yet,
// which is why the engine retries unresolved messages with a bounded budget.
//
// Custom strategies can be implemented by satisfying the Strategy interface.
package resolve
