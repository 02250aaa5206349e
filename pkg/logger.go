package game

import "sync"

// Logger keeps the last log lines in memory so a full-screen UI can show them
// instead of letting them scribble over the frame.
type Logger struct {
	mu   *sync.Mutex
	rows *[]string
	max  int
}

func NewLogger(max int) Logger {
	return Logger{
		mu:   new(sync.Mutex),
		rows: new([]string),
		max:  max,
	}
}

func (l Logger) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.rows = append(*l.rows, string(p))
	if l.max > 0 && len(*l.rows) > l.max {
		*l.rows = (*l.rows)[len(*l.rows)-l.max:]
	}
	return len(p), nil
}

func (l Logger) GetLogs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(*l.rows))
	copy(out, *l.rows)
	return out
}
