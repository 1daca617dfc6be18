package transport

import (
	"bytes"
	"sync"
)

// fakeStream is an in-memory NetStream pair used by handshake and stream
// tests so they don't need a real socket.
type fakeStream struct {
	mu     sync.Mutex
	toPeer *bytes.Buffer
	fromPeer *bytes.Buffer
	closed bool
}

func newFakeStreamPair() (*fakeStream, *fakeStream) {
	a := &bytes.Buffer{}
	b := &bytes.Buffer{}
	left := &fakeStream{toPeer: a, fromPeer: b}
	right := &fakeStream{toPeer: b, fromPeer: a}
	return left, right
}

func (f *fakeStream) RecvUnbuffered(buf []byte, deadline Deadline) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fromPeer.Len() == 0 {
		if deadline.IsReached() {
			return 0, &TimeoutError{}
		}
		return 0, nil
	}
	return f.fromPeer.Read(buf)
}

func (f *fakeStream) Send(data []byte, deadline Deadline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.toPeer.Write(data)
	return err
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
