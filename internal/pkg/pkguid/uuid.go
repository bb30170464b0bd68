package pkguid

import "github.com/google/uuid"

// UUID generates time-ordered UUIDv7 strings for correlation IDs.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a UUIDv7, or a random v4 if the clock sequence cannot be
// read.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
