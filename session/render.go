package session

type Change string

const (
	ChangeAdded      Change = "added"
	ChangeRemoved    Change = "removed"
	ChangeWindow     Change = "window"
	ChangeThreshold  Change = "threshold"
	ChangeVisibility Change = "visibility"
	ChangeRecomputed Change = "recomputed"
)

// RenderRequest tells the presentation layer which records to redraw.
type RenderRequest struct {
	Change Change
	IDs    []int
}

type Listener func(RenderRequest)

// emit is called without the lock held so that the listener may read the session.
func (s *Session) emit(req RenderRequest) {
	if s.listener == nil {
		return
	}
	s.listener(req)
}
