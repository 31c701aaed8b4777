package keys

// Defines common keys used in context. Should
// be consulted when adding new keys to avoid conflicts.

type contextKey int

const (
	DB_CONTEXT_KEY contextKey = iota
)
