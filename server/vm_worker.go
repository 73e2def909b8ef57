// Package server serializes concurrent access to a single interpreter and
// tracks named workspace sessions layered over one shared bootstrap,
// since the interpreter itself is strictly single-threaded.
package server

import (
	"fmt"

	"github.com/etherlang/ether/interp"
)

// vmRequest is a unit of work to run on the interpreter's owning goroutine.
type vmRequest struct {
	fn   func(*interp.Interpreter) interface{}
	done chan vmResult
}

type vmResult struct {
	value interface{}
	err   error
}

// Worker serializes all access to a single Interpreter through one
// goroutine. Any number of caller goroutines may submit work via Do; the
// interpreter itself only ever runs on the worker's own goroutine.
type Worker struct {
	vm       *interp.Interpreter
	requests chan vmRequest
	quit     chan struct{}
}

// NewWorker creates a Worker over vm and starts its processing goroutine.
func NewWorker(vm *interp.Interpreter) *Worker {
	w := &Worker{
		vm:       vm,
		requests: make(chan vmRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn against the interpreter, recovering from panics that
// would otherwise indicate an invariant violation.
func (w *Worker) execute(fn func(*interp.Interpreter) interface{}) vmResult {
	var result vmResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn(w.vm)
	}()
	return result
}

// Do submits fn for execution on the interpreter's goroutine and blocks
// until it completes.
func (w *Worker) Do(fn func(*interp.Interpreter) interface{}) (interface{}, error) {
	req := vmRequest{fn: fn, done: make(chan vmResult, 1)}
	w.requests <- req
	result := <-req.done
	return result.value, result.err
}

// DoInSession is Do with fn's panics annotated by which session produced
// them. A single Worker backs every session an editor or REPL frontend
// has open at once (server.Sessions), all serialized through the same
// goroutine, so a panic's Go error alone doesn't say whose source
// triggered it — this stitches that back in without changing what Do
// itself reports to callers that don't have a session in hand.
func (w *Worker) DoInSession(session *Session, fn func(*interp.Interpreter) interface{}) (interface{}, error) {
	value, err := w.Do(fn)
	if err != nil {
		return value, fmt.Errorf("session %s (%s): %w", session.ID, session.Name, err)
	}
	return value, nil
}

// Stop shuts down the worker goroutine.
func (w *Worker) Stop() {
	close(w.quit)
}

// VM returns the underlying interpreter, for read-only metadata access
// that a caller has already established doesn't race with the worker
// (e.g. reading vm.Env's well-known objects, which bootstrap fixes once
// at startup).
func (w *Worker) VM() *interp.Interpreter {
	return w.vm
}
