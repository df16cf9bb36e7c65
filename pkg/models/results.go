package models

// LoadState tells a caller how a persisted file was read.
type LoadState int

const (
	// Loaded means the file existed and decoded successfully
	Loaded LoadState = iota
	// Missing means there was no file yet
	Missing
	// Corrupt means the file existed but could not be read or decoded
	Corrupt
)

func (s LoadState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Missing:
		return "missing"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// ReadResult is the outcome of a best-effort read. Value always holds a usable
// value: the decoded data when State is Loaded, the empty default otherwise.
type ReadResult[T any] struct {
	Value T
	State LoadState
	Err   error
}

// OK reports whether the value was read from storage.
func (r ReadResult[T]) OK() bool {
	return r.State == Loaded
}
