package pkguid

// StringID generates unique string identifiers: correlation IDs and API
// tokens.
type StringID interface {
	Generate() string
}

// NumberID generates unique int64 identifiers for database rows. IDs from a
// single generator must be increasing.
type NumberID interface {
	Generate() int64
}
