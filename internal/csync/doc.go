// Package csync provides small generic concurrent containers.
//
// The containers guard their state with a sync.RWMutex and hand out copies,
// never the underlying storage, so callers can iterate results freely.
//
// Example usage:
//
//	// One completion session per view
//	sessions := csync.NewMap[string, *session.Session]()
//	s, created := sessions.GetOrCreate(viewID, func() *session.Session {
//		return session.New(...)
//	})
//
//	// Bounded fault history
//	faults := csync.NewRing[guard.Fault](64)
//	faults.Append(fault)
//	for _, f := range faults.Snapshot() {
//		fmt.Println(f.Err)
//	}
package csync
