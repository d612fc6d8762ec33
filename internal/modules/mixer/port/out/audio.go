package out

// Backend is one looping player bound to a single source. Calls are
// fire-and-forget from the channel's point of view: errors are logged by the
// caller and never propagated further.
type Backend interface {
	Play() error
	Stop() error
	SetVolume(v float64) error
	SetLoop(loop bool) error
	Release() error
}

// BackendFactory constructs backends. Open may block while the device or
// decoder initializes; callers run it off the loop thread.
type BackendFactory interface {
	Open(source string) (Backend, error)
}
