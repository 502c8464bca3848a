package link

import (
	"bytes"
	"io"
	"sync"
)

// scriptedTransport replays read steps: a nil step is a timeout (zero bytes),
// otherwise bytes are returned one by one. After the script ends, reads
// return io.EOF.
type scriptedTransport struct {
	steps   [][]byte
	readErr error
	written bytes.Buffer
	lock    sync.Mutex
}

func newScriptedTransport(steps ...[]byte) *scriptedTransport {
	return &scriptedTransport{steps: steps}
}

func (s *scriptedTransport) inject(steps ...[]byte) {
	s.lock.Lock()
	s.steps = append(s.steps, steps...)
	s.lock.Unlock()
}

func (s *scriptedTransport) Read(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.steps) == 0 {
		if s.readErr != nil {
			return 0, s.readErr
		}
		return 0, io.EOF
	}
	step := s.steps[0]
	if len(step) == 0 {
		s.steps = s.steps[1:]
		return 0, nil
	}
	n := copy(p, step[:1])
	if len(step) == 1 {
		s.steps = s.steps[1:]
	} else {
		s.steps[0] = step[1:]
	}
	return n, nil
}

func (s *scriptedTransport) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.written.Write(p)
}

func (s *scriptedTransport) output() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := s.written.String()
	s.written.Reset()
	return out
}

func timeoutStep() []byte {
	return nil
}

func line(s string) []byte {
	return []byte(s + "\n")
}
