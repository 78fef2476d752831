//go:build !windows

package main

import (
	"context"

	"github.com/pkg/term"
)

const QUITKEY = 'q'

type keyReader struct {
	t *term.Term
}

// openKeys puts terminal to cbreak mode. No echo, no line buffering, output stays normal
func openKeys() (*keyReader, error) {
	t, err := term.Open("/dev/tty", term.CBreakMode)
	if err != nil {
		return nil, err
	}
	return &keyReader{t: t}, nil
}

// watch calls quit on q, any other key prints help
func (p *keyReader) watch(ctx context.Context, quit func(), say func(string)) {
	buf := make([]byte, 8)
	for ctx.Err() == nil {
		n, err := p.t.Read(buf)
		if err != nil {
			return
		}
		for _, ch := range buf[:n] {
			if ch == QUITKEY {
				quit()
				return
			}
		}
		if 0 < n {
			say("Press q to quit...")
		}
	}
}

func (p *keyReader) Close() error {
	p.t.Restore()
	return p.t.Close()
}
