package iso8583

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Processor decodes raw messages concurrently against one shared Schema.
// The schema is only read, so any number of workers may use it at once.
type Processor struct {
	schema       *Schema
	concurrency  int
	framed       bool
	errorHandler func(error)
}

// ProcessorOption defines a function signature for configuring a Processor.
type ProcessorOption func(*Processor)

// WithConcurrency sets the maximum number of concurrent decodes.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithoutMsgLength makes the processor expect input without the
// total-length descriptor.
func WithoutMsgLength() ProcessorOption {
	return func(p *Processor) {
		p.framed = false
	}
}

// WithErrorHandler sets the callback for decode errors in batch and stream
// processing.
func WithErrorHandler(handler func(error)) ProcessorOption {
	return func(p *Processor) {
		p.errorHandler = handler
	}
}

func NewProcessor(schema *Schema, opts ...ProcessorOption) *Processor {
	p := &Processor{
		schema:      schema,
		concurrency: 4,
		framed:      true,
	}
	p.errorHandler = func(err error) {
		p.schema.logger.Warn("iso8583: processor decode failed", slog.Any("error", err))
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process decodes a single raw message.
func (p *Processor) Process(data []byte) (*Message, error) {
	if p.framed {
		return p.schema.Parse(data)
	}
	return p.schema.ParseWithoutMsgLength(data)
}

func (p *Processor) report(err error) {
	if p.errorHandler != nil {
		p.errorHandler(err)
	}
}

// acquire takes a worker slot, failing once ctx is done.
func acquire(ctx context.Context, slots chan struct{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessBatch decodes every item of batch. Results keep input order, with
// nil where an item failed. The returned error is the failure with the
// lowest input position; every failure also goes to the error handler.
func (p *Processor) ProcessBatch(ctx context.Context, batch [][]byte) ([]*Message, error) {
	msgs := make([]*Message, len(batch))
	errs := make([]error, len(batch))
	slots := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i := range batch {
		if err := acquire(ctx, slots); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int) {
			defer func() {
				<-slots
				wg.Done()
			}()
			msgs[i], errs[i] = p.Process(batch[i])
			if errs[i] != nil {
				p.report(fmt.Errorf("batch item %d: %w", i, errs[i]))
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return msgs, err
		}
	}
	return msgs, nil
}

// ProcessStream decodes messages from input and sends them to output until
// input is closed or ctx is done. Output order follows completion, not
// arrival. Messages that fail to decode go to the error handler and are
// skipped. It returns once every started decode has finished.
func (p *Processor) ProcessStream(ctx context.Context, input <-chan []byte, output chan<- *Message) error {
	slots := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		var data []byte
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok = <-input:
		}
		if !ok {
			return nil
		}
		if err := acquire(ctx, slots); err != nil {
			return err
		}

		wg.Add(1)
		go func(data []byte) {
			defer func() {
				<-slots
				wg.Done()
			}()
			m, err := p.Process(data)
			if err != nil {
				p.report(err)
				return
			}
			select {
			case output <- m:
			case <-ctx.Done():
			}
		}(data)
	}
}
