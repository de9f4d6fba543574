package stream

// TransformFunc converts one input chunk into zero or more output chunks,
// pushing each via push, and invokes callback exactly once when done (with
// a non-nil error to abort the stream).
type TransformFunc func(data any, push func(any), callback func(error))

// Duplex pairs a Readable and a Writable with independent high-water
// marks, matching the specification's Transform contract (§4.3): data
// written in is transformed and the results are pushed out the Readable
// side.
type Duplex struct {
	*Readable
	*Writable
}

// NewTransform builds a Duplex whose Writable side feeds each chunk to fn,
// with fn's pushed output landing in the Readable side's buffer.
func NewTransform(highWaterMarkIn, highWaterMarkOut int, fn TransformFunc) *Duplex {
	d := &Duplex{}
	d.Readable = NewReadable(highWaterMarkOut, nil)
	d.Writable = NewWritable(highWaterMarkIn, func(w *Writable, data any, callback func(error)) {
		fn(data, func(out any) { d.Readable.Push(out, nil) }, callback)
	})
	d.Writable.OnFinish(func(err error) {
		d.Readable.Push(nil, err)
	})
	return d
}

// NewPassThrough builds a Duplex that forwards every written chunk to its
// Readable side unchanged, useful as a stream adapter or test fixture.
func NewPassThrough(highWaterMark int) *Duplex {
	return NewTransform(highWaterMark, highWaterMark, func(data any, push func(any), callback func(error)) {
		push(data)
		callback(nil)
	})
}

// Ended reports whether the Duplex's Readable side has received its end
// marker. Readable and Writable both define Ended, so the embedding would
// otherwise leave d.Ended() an ambiguous selector; this resolves it to the
// side callers actually mean when draining a Duplex to completion.
func (d *Duplex) Ended() bool { return d.Readable.Ended() }
