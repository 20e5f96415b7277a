package fes

import "sync"

// lazyNodes reads latitude rows from an open file on first access and
// keeps them. Rows are immutable once cached.
type lazyNodes struct {
	wf   *waveFile
	rows map[int][]complex128
	mu   sync.RWMutex // Protect rows.
}

func newLazyNodes(wf *waveFile) *lazyNodes {
	return &lazyNodes{wf: wf, rows: make(map[int][]complex128)}
}

// Node implements interp.Nodes.
func (l *lazyNodes) Node(iLat, iLon int) (complex128, error) {
	l.mu.RLock()
	row, ok := l.rows[iLat]
	l.mu.RUnlock()

	if !ok {
		var err error
		row, err = l.wf.readRow(iLat)
		if err != nil {
			return 0, err
		}
		l.mu.Lock()
		l.rows[iLat] = row
		l.mu.Unlock()
	}
	return row[iLon], nil
}

// cached returns the number of rows read so far.
func (l *lazyNodes) cached() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rows)
}
