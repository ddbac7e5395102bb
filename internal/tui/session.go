package tui

// DocState is the lifecycle of the document behind the Q&A tab.
type DocState int

const (
	// DocNoDocument means nothing has been uploaded in this session.
	DocNoDocument DocState = iota
	// DocProcessing means an upload is in flight.
	DocProcessing
	// DocReady means the last upload succeeded and questions are accepted.
	DocReady
	// DocFailed means the last upload failed.
	DocFailed
)

// String returns a short label for s.
func (s DocState) String() string {
	switch s {
	case DocProcessing:
		return "processing"
	case DocReady:
		return "ready"
	case DocFailed:
		return "failed"
	default:
		return "no document"
	}
}

// Session holds the per-session document state. The zero value is a session
// with no document.
type Session struct {
	// State is the current document state.
	State DocState

	// FileName is the base name of the last selected document.
	FileName string
}

// Select records a newly chosen file and moves to DocProcessing. Choosing a
// file whose name differs from the recorded one first resets the session to
// DocNoDocument. It reports whether that reset happened.
func (s *Session) Select(name string) bool {
	reset := name != s.FileName
	if reset {
		s.State = DocNoDocument
		s.FileName = name
	}
	s.State = DocProcessing
	return reset
}

// Complete applies the outcome of the upload of name. Outcomes for a file
// other than the current one are ignored and Complete reports false.
func (s *Session) Complete(name string, err error) bool {
	if name != s.FileName || s.State != DocProcessing {
		return false
	}
	if err != nil {
		s.State = DocFailed
	} else {
		s.State = DocReady
	}
	return true
}

// CanAsk reports whether questions are accepted.
func (s *Session) CanAsk() bool { return s.State == DocReady }
