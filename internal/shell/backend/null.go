package backend

import (
	"strings"
	"sync"
)

// Null implements Backend without a native surface. Tests script input
// through Post and inspect the drawn grid through Row and Contains.
type Null struct {
	mu      sync.Mutex
	width   int
	height  int
	cells   map[[2]int]rune
	events  chan Event
	closed  bool
	started bool
}

// NewNull creates a null backend with the given surface size.
func NewNull(width, height int) *Null {
	return &Null{
		width:  width,
		height: height,
		cells:  make(map[[2]int]rune),
		events: make(chan Event, 64),
	}
}

func (n *Null) Init() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = true
	return nil
}

func (n *Null) Fini() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.closed {
		n.closed = true
		close(n.events)
	}
}

func (n *Null) Size() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.width, n.height
}

// Post enqueues a scripted event for PollEvent to return.
func (n *Null) Post(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.events <- ev
}

func (n *Null) PollEvent() Event {
	ev, ok := <-n.events
	if !ok {
		return Event{Type: EventNone}
	}
	return ev
}

func (n *Null) Interrupt() {
	n.Post(Event{Type: EventInterrupt})
}

func (n *Null) SetCell(x, y int, r rune, _ Style) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if x < 0 || y < 0 || x >= n.width || y >= n.height {
		return
	}
	n.cells[[2]int{x, y}] = r
}

func (n *Null) Fill(x, y, w, h int, r rune, style Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			n.SetCell(col, row, r, style)
		}
	}
}

func (n *Null) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cells = make(map[[2]int]rune)
}

func (n *Null) SetDefaultStyle(Style) {}

func (n *Null) Show() {}

// Row returns the text of one grid row with trailing blanks trimmed.
func (n *Null) Row(y int) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	var sb strings.Builder
	for x := 0; x < n.width; x++ {
		r, ok := n.cells[[2]int{x, y}]
		if !ok {
			r = ' '
		}
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

// Contains reports whether the text appears on any row.
func (n *Null) Contains(text string) bool {
	_, h := n.Size()
	for y := 0; y < h; y++ {
		if strings.Contains(n.Row(y), text) {
			return true
		}
	}
	return false
}
