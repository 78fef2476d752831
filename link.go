/*
Link keeps serial connection to sensor alive and passes decoded measurements to sink.

States

	Closed    no handle. Initial state
	Open      handle is held, reader goroutine listening
	Reopening handle broke, trying once to open same port again

Reader goroutine is the event source. Every Read with bytes is one notification,
drained synchronously under link lock. Close takes same lock so no measurement
is delivered after Close returns.

Bytes left over after full windows wait for next read. A read timeout drops them,
so partial frames do not shift windows past the silent gap between frames.
*/
package pmsensor

import (
	"errors"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"
)

const (
	READCHUNKSIZE = 20 //One frame and some slack
	ERRORSCHSIZE  = 4
)

type LinkState int

const (
	LinkClosed LinkState = iota
	LinkOpen
	LinkReopening
)

func (s LinkState) String() string {
	switch s {
	case LinkClosed:
		return "closed"
	case LinkOpen:
		return "open"
	case LinkReopening:
		return "reopening"
	}
	return "unknown"
}

// linkState is tagged union. Only openState carries handle
type linkState interface {
	kind() LinkState
}

type closedState struct{}

type openState struct {
	port   string
	handle Port
	gen    uint64
	done   chan struct{} //closed when reader of this handle exits
}

type reopeningState struct {
	port string
}

func (closedState) kind() LinkState { return LinkClosed }
func (openState) kind() LinkState { return LinkOpen }
func (reopeningState) kind() LinkState { return LinkReopening }

// Sink gets measurements in stream order. Called from reader goroutine with link locked,
// so it must not call Open or Close of the same link
type Sink func(Measurement)

type LinkOption func(*Link)

func WithOpener(opener Opener) LinkOption {
	return func(l *Link) { l.opener = opener }
}

func WithLogger(logger zerolog.Logger) LinkOption {
	return func(l *Link) { l.log = logger }
}

// WithStateHook is called on every state change, with link locked
func WithStateHook(hook func(from, to LinkState)) LinkOption {
	return func(l *Link) { l.onState = hook }
}

type Link struct {
	opener  Opener
	config  Config
	sink    Sink
	log     zerolog.Logger
	onState func(from, to LinkState)

	mu    sync.Mutex
	state linkState
	gen   uint64 //Changes every time handle is released. Stale readers compare to this

	errorsCh chan error
}

func NewLink(sink Sink, opts ...LinkOption) *Link {
	result := &Link{
		opener:   SerialOpener{},
		config:   DefaultConfig(),
		sink:     sink,
		log:      zerolog.Nop(),
		state:    closedState{},
		errorsCh: make(chan error, ERRORSCHSIZE),
	}
	for _, opt := range opts {
		opt(result)
	}
	return result
}

/*
Open claims port. True if link is open after call.
Already open to same port is no-op. Open to other port closes old first.
Failure leaves link closed and returns PortUnavailable
*/
func (l *Link) Open(port string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st, ok := l.state.(openState); ok {
		if st.port == port {
			return true, nil
		}
		l.closeLocked()
	}
	if err := l.openLocked(port); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases handle if held. Idempotent. Waits reader goroutine to finish
func (l *Link) Close() {
	l.mu.Lock()
	done := l.closeLocked()
	l.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (l *Link) IsOpen() bool {
	return l.State() == LinkOpen
}

func (l *Link) State() LinkState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.kind()
}

// Port is name of the open port, empty if not open
func (l *Link) Port() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.state.(openState); ok {
		return st.port
	}
	return ""
}

// Errors reports failures happening on reader side. Like failed reopen. Non-blocking, drops when full
func (l *Link) Errors() <-chan error {
	return l.errorsCh
}

func (l *Link) reportError(err error) {
	select {
	case l.errorsCh <- err:
	default:
		l.log.Warn().Err(err).Msg("error channel full, dropping")
	}
}

func (l *Link) setState(next linkState) {
	from := l.state.kind()
	l.state = next
	to := next.kind()
	if from == to {
		return
	}
	l.log.Info().Str("from", from.String()).Str("to", to.String()).Msg("link state")
	if l.onState != nil {
		l.onState(from, to)
	}
}

func (l *Link) openLocked(port string) error {
	handle, errOpen := l.opener.Open(port, l.config)
	if errOpen != nil {
		l.setState(closedState{})
		if !errorx.IsOfType(errOpen, PortUnavailable) {
			errOpen = PortUnavailable.Wrap(errOpen, "serial device %v", port)
		}
		l.log.Debug().Err(errOpen).Str("port", port).Msg("open failed")
		return errOpen
	}
	st := openState{
		port:   port,
		handle: handle,
		gen:    l.gen,
		done:   make(chan struct{}),
	}
	l.setState(st)
	go l.listen(st)
	return nil
}

// closeLocked returns done channel of released reader, nil if nothing was open
func (l *Link) closeLocked() chan struct{} {
	st, ok := l.state.(openState)
	if !ok {
		l.setState(closedState{})
		return nil
	}
	l.gen++
	if errClose := st.handle.Close(); errClose != nil {
		l.log.Warn().Err(errClose).Str("port", st.port).Msg("closing port")
	}
	l.setState(closedState{})
	return st.done
}

/*
invalidate is called by reader of current handle, link locked.
One reopen attempt per invalidation, no looping here
*/
func (l *Link) invalidate(st openState, cause error) {
	errInvalid := readFailure(cause, st.port)
	l.log.Warn().Err(errInvalid).Str("port", st.port).Msg("link invalidated, reopening")

	l.gen++
	var result error
	if errClose := st.handle.Close(); errClose != nil {
		result = multierror.Append(result, errClose)
	}
	l.setState(reopeningState{port: st.port})

	errOpen := l.openLocked(st.port)
	if errOpen == nil {
		if result != nil {
			l.log.Debug().Err(result).Str("port", st.port).Msg("closing invalidated handle")
		}
		return
	}
	result = multierror.Append(result, errOpen)
	l.reportError(PortUnavailable.Wrap(result, "reopen of %v failed", st.port))
}

func (l *Link) listen(st openState) {
	defer close(st.done)

	chunk := make([]byte, READCHUNKSIZE)
	pending := make([]byte, 0, FRAMESIZE+READCHUNKSIZE)
	for {
		n, errRead := st.handle.Read(chunk)
		if errors.Is(errRead, io.EOF) && n == 0 {
			errRead = nil
		}

		l.mu.Lock()
		if l.gen != st.gen { //Closed or replaced while reading
			l.mu.Unlock()
			return
		}
		if n == 0 && errRead == nil {
			//Read timeout. Sensor is silent between frames, next window starts from fresh bytes
			pending = pending[:0]
			l.mu.Unlock()
			continue
		}
		pending = append(pending, chunk[:n]...)
		pending = l.drain(pending)
		if errRead != nil {
			l.invalidate(st, errRead)
			l.mu.Unlock()
			return
		}
		l.mu.Unlock()
	}
}

// drain decodes fixed windows until less than one frame is left. Remainder waits next read
func (l *Link) drain(pending []byte) []byte {
	consumed := 0
	for FRAMESIZE <= len(pending)-consumed {
		window := pending[consumed : consumed+FRAMESIZE]
		consumed += FRAMESIZE

		meas, ok := Decode(window)
		if !ok {
			if l.log.GetLevel() <= zerolog.DebugLevel {
				l.log.Debug().Err(decodeDiscarded.New("frame discarded, %v", discardReason(window))).Hex("frame", window).Msg("discarded")
			}
			continue
		}
		if l.sink != nil {
			l.sink(meas)
		}
	}
	rest := copy(pending, pending[consumed:])
	return pending[:rest]
}
