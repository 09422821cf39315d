package companion

import "sync"

const (
	// HistoryCapacity is the number of turns kept per conversation.
	HistoryCapacity = 5
	// PromptTurns is the number of recent turns shown to the model.
	PromptTurns = 3
)

// Turn is one completed exchange.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// History is a bounded FIFO of completed turns. The oldest turn is evicted
// once capacity is exceeded.
type History struct {
	mu       sync.Mutex
	turns    []Turn
	capacity int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &History{capacity: capacity}
}

func (h *History) Append(t Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.turns = append(h.turns, t)
	if over := len(h.turns) - h.capacity; over > 0 {
		h.turns = append([]Turn(nil), h.turns[over:]...)
	}
}

// Recent returns up to n of the newest turns, oldest first.
func (h *History) Recent(n int) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 {
		return nil
	}
	start := max(len(h.turns)-n, 0)
	return append([]Turn(nil), h.turns[start:]...)
}

// Turns returns a copy of every held turn, oldest first.
func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Turn(nil), h.turns...)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}
