package services

import (
	"fmt"
	"sync"
	"time"
)

// Document numbers follow the prefix + YYMMDD + sequence format, sequence
// resetting per day: RC2608300001, OB2608300001, RT..., TR...
type numberSource struct {
	mu   sync.Mutex
	date string
	seqs map[string]int
}

func newNumberSource() *numberSource {
	return &numberSource{seqs: make(map[string]int)}
}

func (n *numberSource) Next(prefix string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	today := time.Now().Format("060102")
	if n.date != today {
		n.date = today
		n.seqs = make(map[string]int)
	}
	n.seqs[prefix]++
	return fmt.Sprintf("%s%s%04d", prefix, today, n.seqs[prefix])
}

// Restore seeds the daily sequence from the highest persisted number so a
// restart does not reissue document numbers.
func (n *numberSource) Restore(prefix string, lastNo string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	today := time.Now().Format("060102")
	if len(lastNo) != len(prefix)+10 || lastNo[len(prefix):len(prefix)+6] != today {
		return
	}
	var seq int
	fmt.Sscanf(lastNo[len(prefix)+6:], "%04d", &seq)
	if n.date != today {
		n.date = today
		n.seqs = make(map[string]int)
	}
	if seq > n.seqs[prefix] {
		n.seqs[prefix] = seq
	}
}
