package session

import "time"

// SetRegistryClock replaces the registry's time source.
func SetRegistryClock(r *Registry, now func() time.Time) {
	r.now = now
}
