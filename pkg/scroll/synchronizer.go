package scroll

// FollowThreshold is the maximum distance from the bottom, in scroll
// units, at which the view is still considered pinned to the latest
// message.
const FollowThreshold = 100

// Viewport carries the scroll metrics of the conversation view. The
// presentation layer measures them and passes them in; this package
// never touches a rendering tree.
type Viewport struct {
	ScrollTop    float64
	ScrollHeight float64
	ClientHeight float64
}

// BottomDistance returns how far the view sits above the live edge.
func (v Viewport) BottomDistance() float64 {
	return v.ScrollHeight - v.ScrollTop - v.ClientHeight
}

// Synchronizer tracks whether the conversation view should auto-follow
// newly arriving messages. It starts in follow mode and reclassifies on
// every user scroll.
type Synchronizer struct {
	followLatest bool
}

func NewSynchronizer() *Synchronizer {
	return &Synchronizer{followLatest: true}
}

// Observe reclassifies follow mode from a user-initiated scroll. This
// runs on every scroll event, not once.
func (s *Synchronizer) Observe(v Viewport) {
	s.followLatest = v.BottomDistance() < FollowThreshold
}

// OnAppend returns the scroll target for a newly appended message. When
// the user scrolled away, the view stays put and ok is false, which is
// the cue to show the "more messages below" affordance.
func (s *Synchronizer) OnAppend(v Viewport) (target float64, ok bool) {
	if !s.followLatest {
		return 0, false
	}
	return v.ScrollHeight, true
}

// JumpToLatest returns the bottom target. With force it overrides a
// manual scroll lock and re-enables follow mode; without force it
// behaves like OnAppend.
func (s *Synchronizer) JumpToLatest(v Viewport, force bool) (target float64, ok bool) {
	if !force {
		return s.OnAppend(v)
	}
	s.followLatest = true
	return v.ScrollHeight, true
}

// FollowLatest reports whether the view is pinned to the newest message.
func (s *Synchronizer) FollowLatest() bool {
	return s.followLatest
}

// ShowJumpAffordance reports whether the "jump to latest" control should
// be visible.
func (s *Synchronizer) ShowJumpAffordance() bool {
	return !s.followLatest
}

// Reset restores follow mode. Called on every new session binding.
func (s *Synchronizer) Reset() {
	s.followLatest = true
}
