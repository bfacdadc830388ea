package session

import "fmt"

// Persistence operations a warning can come from
const (
	OpLoad   = "load"
	OpDecode = "decode"
	OpSave   = "save"
	OpRemove = "remove"
)

// PersistenceWarning reports a storage fault the store recovered from.
// It is logged and passed to the warning hook, never returned to callers.
type PersistenceWarning struct {
	Op  string
	Key string
	Err error
}

func (w PersistenceWarning) Error() string {
	if w.Key == "" {
		return fmt.Sprintf("session %s failed: %v", w.Op, w.Err)
	}
	return fmt.Sprintf("session %s %q failed: %v", w.Op, w.Key, w.Err)
}

func (w PersistenceWarning) Unwrap() error {
	return w.Err
}
