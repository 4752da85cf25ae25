// Package iterator provides the lazy, forward only, prefix scoped sequence that
// every range read of a transaction goes through.
//
// A Prefix iterator moves through four states:
//
//	Init      nothing opened yet
//	Empty     cursor open, no element buffered
//	Fetched   the next element is decoded and buffered
//	Completed cursor closed and iterator deregistered, terminal
//
// HasNext and Peek fetch at most once per element, so asking again is free,
// and an iterator can be closed at any point without leaking its cursor.
package iterator

import (
	"bytes"
	"iter"
	"sync"

	"github.com/typedb/typedb-sub037/fault"
)

// Cursor is an ordered cursor over one read snapshot.
type Cursor interface {
	// Seek moves to the least key not less than key.
	Seek(key []byte)
	// ValidForPrefix reports whether the cursor is on a key with the prefix.
	ValidForPrefix(prefix []byte) bool
	// Key returns a copy of the current key.
	Key() []byte
	// Value returns a copy of the current value.
	Value() ([]byte, error)
	// Next moves to the following key.
	Next()
	// Close releases the cursor.
	Close()
}

// Opener opens cursors restricted to a key prefix.
type Opener interface {
	OpenCursor(prefix []byte) (Cursor, error)
}

// State of a Prefix iterator.
type State int

const (
	Init State = iota
	Empty
	Fetched
	Completed
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Empty:
		return "empty"
	case Fetched:
		return "fetched"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Decoder builds an element from a key and its value. Both slices are owned by
// the decoder.
type Decoder[T any] func(key, value []byte) (T, error)

// Prefix is a single consumer sequence of the decoded entries whose keys start
// with a prefix, in ascending key order.
type Prefix[T any] struct {
	mu       sync.Mutex
	state    State
	opener   Opener
	registry *Registry
	handle   uint64
	prefix   []byte
	decode   Decoder[T]
	cursor   Cursor
	next     T
	err      error
}

// New returns an iterator that opens its cursor on first use.
func New[T any](o Opener, r *Registry, prefix []byte, decode Decoder[T]) *Prefix[T] {
	return &Prefix[T]{
		opener:   o,
		registry: r,
		prefix:   bytes.Clone(prefix),
		decode:   decode,
	}
}

// State is the current state.
func (p *Prefix[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err is the error that ended the sequence early, if any.
func (p *Prefix[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// HasNext reports whether another element is available, fetching it if need
// be. Once it returns false it always returns false.
func (p *Prefix[T]) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasNext()
}

func (p *Prefix[T]) hasNext() bool {
	switch p.state {
	case Completed:
		return false
	case Fetched:
		return true
	case Init:
		if !p.initialise() {
			return false
		}
	default:
		p.cursor.Next()
	}
	return p.fetch()
}

func (p *Prefix[T]) initialise() bool {
	var err error
	if p.cursor, err = p.opener.OpenCursor(p.prefix); chk.E(err) {
		p.fail(err)
		return false
	}
	if p.handle, err = p.registry.Add(p); err != nil {
		p.fail(err)
		return false
	}
	p.state = Empty
	p.cursor.Seek(p.prefix)
	return true
}

func (p *Prefix[T]) fetch() bool {
	if !p.cursor.ValidForPrefix(p.prefix) {
		p.recycle()
		return false
	}
	k := p.cursor.Key()
	v, err := p.cursor.Value()
	if chk.E(err) {
		p.fail(err)
		return false
	}
	if p.next, err = p.decode(k, v); chk.E(err) {
		p.fail(err)
		return false
	}
	p.state = Fetched
	return true
}

func (p *Prefix[T]) fail(err error) {
	p.err = err
	p.recycle()
}

// recycle closes the cursor and deregisters, leaving the iterator completed.
func (p *Prefix[T]) recycle() {
	if p.state == Completed {
		return
	}
	p.state = Completed
	var zero T
	p.next = zero
	if p.cursor != nil {
		p.cursor.Close()
		p.cursor = nil
	}
	if p.handle != 0 {
		p.registry.Remove(p.handle)
	}
}

// Peek returns the next element without consuming it.
func (p *Prefix[T]) Peek() (v T, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasNext() {
		err = p.exhausted()
		return
	}
	return p.next, nil
}

// Next consumes and returns the next element. On an exhausted sequence it
// fails with fault.ErrEmptySequence, or with the error that ended it.
func (p *Prefix[T]) Next() (v T, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasNext() {
		err = p.exhausted()
		return
	}
	v = p.next
	var zero T
	p.next = zero
	p.state = Empty
	return
}

func (p *Prefix[T]) exhausted() error {
	if p.err != nil {
		return p.err
	}
	return fault.New(fault.ErrEmptySequence, "iterate", p.prefix)
}

// Close abandons the sequence. It is safe to call at any time, more than once.
func (p *Prefix[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recycle()
	return nil
}

// Collect drains the sequence into a slice.
func (p *Prefix[T]) Collect() (out []T, err error) {
	for p.HasNext() {
		var v T
		if v, err = p.Next(); err != nil {
			return
		}
		out = append(out, v)
	}
	err = p.Err()
	return
}

// Seq adapts the iterator for a range loop. Breaking out of the loop closes
// the iterator; check Err afterwards.
func (p *Prefix[T]) Seq() iter.Seq[T] {
	return func(yield func(T) bool) {
		for p.HasNext() {
			v, err := p.Next()
			if err != nil {
				return
			}
			if !yield(v) {
				chk.E(p.Close())
				return
			}
		}
	}
}
