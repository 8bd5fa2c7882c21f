package engine

import "github.com/charmbracelet/harmonica"

// capField animates the falling peak markers drawn above the bars. A cap
// snaps up instantly when its bar overtakes it, then springs back down
// toward the bar, never dropping below it.
type capField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newCapField(fps int, frequency, damping float64) *capField {
	return &capField{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (c *capField) resize(n int) {
	c.pos = make([]float64, n)
	c.vel = make([]float64, n)
}

func (c *capField) reset() {
	for i := range c.pos {
		c.pos[i] = 0
		c.vel[i] = 0
	}
}

func (c *capField) step(i int, bar float64) float64 {
	if bar >= c.pos[i] {
		c.pos[i] = bar
		c.vel[i] = 0
		return bar
	}
	p, v := c.spring.Update(c.pos[i], c.vel[i], bar)
	if p < bar {
		p = bar
		v = 0
	}
	c.pos[i] = p
	c.vel[i] = v
	return p
}
