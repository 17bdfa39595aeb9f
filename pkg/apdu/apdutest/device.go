// Package apdutest provides a scripted device for exercising frame exchanges
// without hardware.
package apdutest

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned when the device receives more requests than scripted.
var ErrScriptExhausted = errors.New("apdutest: no scripted reply left")

// Step is one scripted answer: either raw reply bytes or an error.
type Step struct {
	Reply []byte
	Err   error
}

// Device replays scripted steps in order and records every request it received.
type Device struct {
	mu       sync.Mutex
	steps    []Step
	requests [][]byte
}

// NewDevice creates a device answering with the given steps.
func NewDevice(steps ...Step) *Device {
	return &Device{steps: steps}
}

// Reply is a convenience step made of payload followed by a status word.
func Reply(data []byte, sw uint16) Step {
	out := make([]byte, 0, len(data)+2)
	out = append(out, data...)
	return Step{Reply: append(out, byte(sw>>8), byte(sw))}
}

// Fail is a step whose exchange fails with err.
func Fail(err error) Step {
	return Step{Err: err}
}

// Exchange records the request and returns the next scripted step.
func (d *Device) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.requests = append(d.requests, append([]byte(nil), request...))

	if len(d.steps) == 0 {
		return nil, ErrScriptExhausted
	}
	step := d.steps[0]
	d.steps = d.steps[1:]

	return step.Reply, step.Err
}

// Requests returns a copy of every request received so far.
func (d *Device) Requests() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]byte(nil), d.requests...)
}

// Remaining reports how many scripted steps were not consumed.
func (d *Device) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.steps)
}
