package pmsensor

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

var errFakeClosed = errors.New("fake port closed")

// testablePort blocks reads until data, injected error or Close
type testablePort struct {
	mu   sync.Mutex
	cond *sync.Cond

	name       string
	readBuffer bytes.Buffer
	readError  error
	timeouts   int
	closed     bool
	closeCalls int

	// strayAfterClose keeps serving buffered bytes after Close
	strayAfterClose bool
}

func newTestablePort(name string) *testablePort {
	result := &testablePort{name: name}
	result.cond = sync.NewCond(&result.mu)
	return result
}

func (p *testablePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.readError != nil {
			err := p.readError
			p.readError = nil
			n, _ := p.readBuffer.Read(b)
			return n, err
		}
		if 0 < p.timeouts {
			p.timeouts--
			return 0, nil
		}
		if 0 < p.readBuffer.Len() && (!p.closed || p.strayAfterClose) {
			return p.readBuffer.Read(b)
		}
		if p.closed {
			return 0, errFakeClosed
		}
		p.cond.Wait()
	}
}

func (p *testablePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.closeCalls++
	p.cond.Broadcast()
	return nil
}

func (p *testablePort) AddReadData(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readBuffer.Write(data)
	p.cond.Broadcast()
}

func (p *testablePort) FailRead(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readError = err
	p.cond.Broadcast()
}

// FailReadWith returns data and err from same Read
func (p *testablePort) FailReadWith(data []byte, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readBuffer.Write(data)
	p.readError = err
	p.cond.Broadcast()
}

// Timeout makes next Read return (0, nil) like expired read timeout
func (p *testablePort) Timeout() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeouts++
	p.cond.Broadcast()
}

func (p *testablePort) Unread() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readBuffer.Len()
}

func (p *testablePort) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// idlePort only times out. Keeps doing so after Close
type idlePort struct {
	mu     sync.Mutex
	closed bool
}

func (p *idlePort) Read(b []byte) (int, error) {
	time.Sleep(10 * time.Millisecond)
	return 0, nil
}

func (p *idlePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// scriptedOpener hands out ports per name. Missing names fail like absent device
type scriptedOpener struct {
	mu      sync.Mutex
	ports   map[string][]*testablePort
	opened  []*testablePort
	attempt int
}

func newScriptedOpener() *scriptedOpener {
	return &scriptedOpener{ports: map[string][]*testablePort{}}
}

// Queue adds port to be returned by next Open of name
func (o *scriptedOpener) Queue(name string) *testablePort {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := newTestablePort(name)
	o.ports[name] = append(o.ports[name], p)
	return p
}

func (o *scriptedOpener) Open(name string, cfg Config) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempt++
	queue := o.ports[name]
	if len(queue) == 0 {
		return nil, errors.New("no such file or directory")
	}
	p := queue[0]
	o.ports[name] = queue[1:]
	o.opened = append(o.opened, p)
	return p, nil
}

func (o *scriptedOpener) Attempts() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attempt
}
