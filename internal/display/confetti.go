package display

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eggtimer-project/eggtimer/internal/notify"
	"github.com/eggtimer-project/eggtimer/pkg/color"
)

var glyphs = []string{"*", "+", "x", "•"}

type piece struct {
	notify.Particle
	visibleAt time.Time
}

// Confetti is a notify.Surface that renders live particles as a strip.
type Confetti struct {
	mu     sync.Mutex
	now    func() time.Time
	pieces map[int]piece
}

// NewConfetti creates an empty confetti surface.
func NewConfetti(now func() time.Time) *Confetti {
	if now == nil {
		now = time.Now
	}
	return &Confetti{now: now, pieces: make(map[int]piece)}
}

// Spawn adds a particle. It appears once its delay has passed.
func (c *Confetti) Spawn(p notify.Particle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pieces[p.ID] = piece{Particle: p, visibleAt: c.now().Add(p.Delay)}
}

// Remove drops a particle.
func (c *Confetti) Remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pieces, id)
}

// Len returns the number of live particles, visible or not.
func (c *Confetti) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pieces)
}

// Strip renders visible particles across width cells. It is empty when no
// particle is live.
func (c *Confetti) Strip(width int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pieces) == 0 || width <= 0 {
		return ""
	}

	ids := make([]int, 0, len(c.pieces))
	for id := range c.pieces {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	cells := make([]string, width)
	for i := range cells {
		cells[i] = " "
	}
	now := c.now()
	for _, id := range ids {
		p := c.pieces[id]
		if now.Before(p.visibleAt) {
			continue
		}
		col := int(p.Left / 100 * float64(width))
		if col >= width {
			col = width - 1
		}
		if col < 0 {
			col = 0
		}
		g := glyphs[int(p.Rotation/90)%len(glyphs)]
		cells[col] = color.Hex(p.Color, g)
	}
	return strings.Join(cells, "")
}
