package export

import (
	"context"
	"io"
)

type stubIterator struct {
	rows   []Row
	index  int
	closed bool
}

func (it *stubIterator) Next(ctx context.Context) (Row, error) {
	_ = ctx
	if it.index >= len(it.rows) {
		return nil, io.EOF
	}
	row := it.rows[it.index]
	it.index++
	return row, nil
}

func (it *stubIterator) Close() error {
	it.closed = true
	return nil
}

type cancelingIterator struct {
	cancel context.CancelFunc
	closed bool
}

func (it *cancelingIterator) Next(ctx context.Context) (Row, error) {
	it.cancel()
	return Row{"x"}, nil
}

func (it *cancelingIterator) Close() error {
	it.closed = true
	return nil
}
