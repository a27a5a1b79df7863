package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for note/help locations.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// MarshalText keeps JSON reports readable.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
