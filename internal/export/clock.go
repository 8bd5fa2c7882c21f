package export

import "time"

// frameClock is the transport the engine reads during an export. Instead of
// a live audio device, position is derived from the frame counter, which
// makes a render of the same track bit-for-bit repeatable.
type frameClock struct {
	frame int64
	fps   int
}

func newFrameClock(fps int) *frameClock {
	return &frameClock{fps: fps}
}

func (c *frameClock) setFrame(i int64) {
	c.frame = i
}

func (c *frameClock) Position() time.Duration {
	return time.Duration(c.frame * int64(time.Second) / int64(c.fps))
}

func (c *frameClock) Playing() bool {
	return true
}
