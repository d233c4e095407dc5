package storage

import (
	"fmt"

	"github.com/arvimal/daisho/internal/store"
)

// Backend names accepted in config.yml.
const (
	BackendSQLite = "sqlite"
	BackendJSONL  = "jsonl"
	BackendBolt   = "bolt"
)

// ValidBackends lists the supported backend values.
var ValidBackends = []string{BackendSQLite, BackendJSONL, BackendBolt}

// Open opens the named backend at path. An empty name means SQLite.
func Open(backend, path string) (store.Backend, error) {
	switch backend {
	case BackendSQLite, "":
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendJSONL:
		j, err := OpenJSONL(path)
		if err != nil {
			return nil, err
		}
		return j, nil
	case BackendBolt:
		b, err := OpenBolt(path)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown backend %q (valid: %v)", backend, ValidBackends)
}
