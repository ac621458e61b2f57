package domain

// Stream is a lazy sequence of response text fragments. Recv blocks
// until the next fragment arrives and returns io.EOF once the response
// is complete. Concatenating all fragments in arrival order yields the
// same text a non-streamed call would have returned.
type Stream interface {
	Recv() (string, error)
	Close() error
}
