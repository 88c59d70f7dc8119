package render

import (
	"bytes"
	"sync"
)

// DefaultPoolSize is the number of idle transactions a Pool retains.
const DefaultPoolSize = 10

// Transaction is the mutable scratch state of one render: the output
// buffer, the id counter for markers, the pending-header slot, the static
// flag and the checksum accumulator. A transaction belongs to exactly one
// in-flight render and goes back to its Pool when the render ends.
type Transaction struct {
	buf       bytes.Buffer
	idCounter int
	header    string
	hasHeader bool
	static    bool
	checksum  Accumulator
}

// Static reports whether markers and checksums are suppressed.
func (t *Transaction) Static() bool {
	return t.static
}

// NextID returns the next marker id. Ids start at 1 for every render.
func (t *Transaction) NextID() int {
	t.idCounter++
	return t.idCounter
}

// EnqueueHeader queues markup to be written immediately before the next
// chunk. A later call replaces an unwritten header.
func (t *Transaction) EnqueueHeader(header string) {
	t.header = header
	t.hasHeader = true
}

// ResetHeader drops an unwritten header.
func (t *Transaction) ResetHeader() {
	t.header = ""
	t.hasHeader = false
}

// Write appends a chunk to the buffer, preceded by the pending header if one
// is queued. The chunk, not the header, is folded into the checksum.
func (t *Transaction) Write(chunk string) {
	if t.hasHeader {
		t.buf.WriteString(t.header)
		t.ResetHeader()
	}
	t.buf.WriteString(chunk)
	t.checksum.WriteString(chunk)
}

// Flush returns the buffered output and empties the buffer.
func (t *Transaction) Flush() string {
	s := t.buf.String()
	t.buf.Reset()
	return s
}

// Buffered returns the number of bytes waiting in the buffer.
func (t *Transaction) Buffered() int {
	return t.buf.Len()
}

// Checksum returns the digest of every chunk written so far.
func (t *Transaction) Checksum() uint64 {
	return t.checksum.Sum()
}

// reset clears all per-render state. The buffer keeps its capacity.
func (t *Transaction) reset(static bool) {
	t.buf.Reset()
	t.idCounter = 0
	t.ResetHeader()
	t.static = static
	t.checksum.Reset()
}

// PoolStats reports pool activity.
type PoolStats struct {
	// Hits counts acquisitions served from the free list.
	Hits uint64
	// Misses counts acquisitions that allocated a new transaction.
	Misses uint64
	// InUse is the number of acquired, unreleased transactions.
	InUse int
	// Idle is the number of transactions on the free list.
	Idle int
}

// Pool hands out reset transactions and takes them back. It is the only
// state shared between concurrent renders; Acquire and Release serialize on
// a mutex.
type Pool struct {
	mu          sync.Mutex
	free        []*Transaction
	size        int
	newChecksum func() Accumulator
	stats       PoolStats
}

// NewPool creates a pool retaining up to size idle transactions. Checksums
// use the named algorithm.
func NewPool(size int, checksumAlgorithm string) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{
		free: make([]*Transaction, 0, size),
		size: size,
		newChecksum: func() Accumulator {
			return NewAccumulator(checksumAlgorithm)
		},
	}
}

// Acquire returns a transaction with an empty buffer, a zero id counter and
// no pending header.
func (p *Pool) Acquire(static bool) *Transaction {
	p.mu.Lock()
	var tx *Transaction
	if n := len(p.free); n > 0 {
		tx = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.stats.Hits++
	} else {
		p.stats.Misses++
	}
	p.stats.InUse++
	p.mu.Unlock()

	if tx == nil {
		tx = &Transaction{checksum: p.newChecksum()}
	}
	tx.reset(static)
	return tx
}

// Release returns a transaction to the pool. Releasing nil is a no-op.
// Transactions beyond the pool size are dropped for the garbage collector.
func (p *Pool) Release(tx *Transaction) {
	if tx == nil {
		return
	}
	tx.reset(false)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.InUse--
	if len(p.free) < p.size {
		p.free = append(p.free, tx)
	}
}

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Idle = len(p.free)
	return s
}
