// Package uuid issues the time-ordered identifiers used as primary keys.
package uuid

import googleuuid "github.com/google/uuid"

// New returns a UUIDv7 string. Ids created later sort after earlier ones, so
// ordering by id follows creation order to the millisecond.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.NewString()
	}
	return id.String()
}
