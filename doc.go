// Package slate is the Composition Root for the slate console.
//
// slate keeps administrative collections (roles and users) as whole
// snapshots in durable key/value slots and derives collision-free codes for
// new records from their display names.
//
// Features:
//
//   - Persisted collections: load on first use, fall back to a default for
//     absent or unreadable slots, write the whole snapshot through on update.
//   - Unique codes: "Admin Root" becomes ADMIN_ROOT, then ADMIN_ROOT_1, ...
//   - Adapters: one file per slot (fs), an embedded SQLite table, or memory.
//   - Drafts: live, advisory code preview while a name is typed; the code is
//     derived again at submit.
//
// Usage:
//
//	svc, err := slate.New(ctx, ".slate", slate.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	role, err := svc.CreateRole(ctx, slate.RoleInput{Name: "Auditor"})
//
// Snapshots are written without cross-process locking: the last writer wins.
package slate
