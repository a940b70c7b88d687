package wire

// Encoder handles low-level protobuf wire format encoding.
//
// Length-delimited children are written with Fork and Join: Fork starts a new
// segment that receives all subsequent writes, Join closes it and splices the
// varint length followed by the segment bytes into the parent. Open segments
// live on a heap-allocated stack, so nesting depth is not bounded by the
// goroutine stack.
type Encoder struct {
	buf   []byte   // segment currently being written
	stack [][]byte // suspended parent segments, innermost last
	spare [][]byte // released segment buffers for reuse
}

// NewEncoder creates a new wire format encoder
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 64),
	}
}

// Bytes returns the encoded bytes. It must only be called with no open
// segments.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Reset clears the encoder buffer and discards any open segments.
func (e *Encoder) Reset() {
	for len(e.stack) > 0 {
		e.release(e.buf)
		e.buf = e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
	}
	e.buf = e.buf[:0]
}

// Depth returns the number of open segments.
func (e *Encoder) Depth() int {
	return len(e.stack)
}

// Len returns the number of bytes in the current segment.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Fork opens a new empty segment for a length-delimited child.
func (e *Encoder) Fork() {
	e.stack = append(e.stack, e.buf)
	if n := len(e.spare); n > 0 {
		e.buf = e.spare[n-1][:0]
		e.spare = e.spare[:n-1]
	} else {
		e.buf = nil
	}
}

// Join closes the innermost segment and appends its length and bytes to the
// parent segment. Join without a matching Fork panics.
func (e *Encoder) Join() {
	n := len(e.stack)
	if n == 0 {
		panic("wire: Join without Fork")
	}
	child := e.buf
	parent := e.stack[n-1]
	e.stack = e.stack[:n-1]

	parent = AppendVarint(parent, uint64(len(child)))
	parent = append(parent, child...)
	e.buf = parent
	e.release(child)
}

func (e *Encoder) release(b []byte) {
	if cap(b) > 0 {
		e.spare = append(e.spare, b[:0])
	}
}

// EncodeTag encodes a field tag
func (e *Encoder) EncodeTag(fieldNumber FieldNumber, wireType WireType) {
	e.buf = AppendVarint(e.buf, uint64(MakeTag(fieldNumber, wireType)))
}
