package queue

// Track is one playable item.
type Track struct {
	Title string
	Path  string
}

// Queue holds the playback order. It is only mutated from Bubble Tea's
// single-threaded Update loop, so there is no locking.
type Queue struct {
	tracks  []Track
	current int
}

// New creates a Queue positioned on the first track.
func New(tracks []Track) *Queue {
	return &Queue{tracks: tracks}
}

// Len reports the total number of tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Index reports the zero-based position of the current track.
func (q *Queue) Index() int {
	return q.current
}

// Current returns the playing track, or nil when the queue is empty.
func (q *Queue) Current() *Track {
	return q.Track(q.current)
}

// Track returns the track at i, or nil when out of range.
func (q *Queue) Track(i int) *Track {
	if i < 0 || i >= len(q.tracks) {
		return nil
	}
	return &q.tracks[i]
}

// Next returns the upcoming track without moving, or nil at the end.
func (q *Queue) Next() *Track {
	return q.Track(q.current + 1)
}

// Advance moves forward one track. Returns false at the end.
func (q *Queue) Advance() bool {
	if q.current+1 >= len(q.tracks) {
		return false
	}
	q.current++
	return true
}

// Previous moves back one track. Returns false at the start.
func (q *Queue) Previous() bool {
	if q.current <= 0 {
		return false
	}
	q.current--
	return true
}

// Jump moves straight to track i. Returns false when i is out of range.
func (q *Queue) Jump(i int) bool {
	if i < 0 || i >= len(q.tracks) {
		return false
	}
	q.current = i
	return true
}

// Peek returns copies of up to n tracks after the current one.
func (q *Queue) Peek(n int) []Track {
	start := q.current + 1
	if start >= len(q.tracks) || n <= 0 {
		return nil
	}
	end := start + n
	if end > len(q.tracks) {
		end = len(q.tracks)
	}
	out := make([]Track, end-start)
	copy(out, q.tracks[start:end])
	return out
}
