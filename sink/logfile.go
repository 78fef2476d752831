package sink

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"pmsensor"
)

// LogFile appends tab separated lines. Header goes in when file is new
type LogFile struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

func OpenLogFile(path string) (*LogFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("log file %v open error %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("log file %v stat error %w", path, err)
	}
	result := &LogFile{f: f, w: bufio.NewWriter(f)}
	if info.Size() == 0 {
		if err := result.writeLine(HEADERLINE); err != nil {
			f.Close()
			return nil, err
		}
	}
	return result, nil
}

// writeLine flushes every line. Program can be killed anytime
func (p *LogFile) writeLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return os.ErrClosed
	}
	if _, err := p.w.WriteString(line + "\n"); err != nil {
		return err
	}
	return p.w.Flush()
}

func (p *LogFile) Put(t time.Time, meas pmsensor.Measurement) error {
	return p.writeLine(FormatLine(t, meas))
}

func (p *LogFile) Note(t time.Time, msg string) error {
	return p.writeLine(FormatTime(t) + "\t" + msg)
}

func (p *LogFile) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return nil
	}
	var result error
	if err := p.w.Flush(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := p.f.Sync(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := p.f.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	p.f = nil
	return result
}
