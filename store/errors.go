package store

import (
	"fmt"

	"harmonichain/primitives"
)

func errNotFound(table string, id primitives.ObjectID) error {
	return fmt.Errorf("store: %s has no row %s", table, id)
}

func errTableFull(table string) error {
	return fmt.Errorf("store: table %s has exhausted its 48-bit instance space", table)
}

var errSnapshotWithOpenSession = fmt.Errorf("store: snapshot requested with an undo session still open")

func errSnapshotTableCountMismatch(registered, recorded int) error {
	return fmt.Errorf("store: snapshot has %d tables, %d are registered", recorded, registered)
}

func errSnapshotTableNameMismatch(want, got string) error {
	return fmt.Errorf("store: snapshot table order mismatch: expected %s, found %s", want, got)
}
