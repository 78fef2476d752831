package main

import (
	"context"
	"errors"
)

const QUITKEY = 'q'

type keyReader struct{}

func openKeys() (*keyReader, error) {
	return nil, errors.New("raw terminal not supported on windows")
}

func (p *keyReader) watch(ctx context.Context, quit func(), say func(string)) {}

func (p *keyReader) Close() error { return nil }
