package jsruntime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// DefaultTimeout bounds a single module run
const DefaultTimeout = 60 * time.Second

var (
	// ErrTimeout interrupts a module that ran longer than the configured timeout
	ErrTimeout = errors.New("script timed out")
	// ErrClosed is returned once the runtime has been closed
	ErrClosed = errors.New("script runtime closed")
)

// Parameter names the module context is injected under
var moduleParams = []string{"console", "loader", "host"}

// Options configures a Runtime
type Options struct {
	// Timeout interrupts a module after this long; zero disables the limit.
	Timeout time.Duration
	Logger  ports.Logger
}

// Runtime runs module code in one shared goja VM. The VM is owned by a
// single loop goroutine; Exec calls are queued and run one at a time.
type Runtime struct {
	vm      *goja.Runtime
	timeout time.Duration
	logger  ports.Logger

	jobs      chan job
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

type job struct {
	run    func() error
	result chan error
}

// New starts a runtime and its loop goroutine
func New(opts Options) *Runtime {
	r := &Runtime{
		vm:      goja.New(),
		timeout: opts.Timeout,
		logger:  opts.Logger,
		jobs:    make(chan job),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Runtime) loop() {
	defer close(r.stopped)
	for {
		select {
		case j := <-r.jobs:
			j.result <- j.run()
		case <-r.quit:
			return
		}
	}
}

// submit runs fn on the loop goroutine and waits for it
func (r *Runtime) submit(ctx context.Context, fn func() error) error {
	j := job{run: fn, result: make(chan error, 1)}
	select {
	case r.jobs <- j:
	case <-r.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-j.result
}

// Exec runs src as the body of a fresh function in the shared global
// scope. The module sees console, loader and host bound to mctx.
func (r *Runtime) Exec(ctx context.Context, mctx ports.ModuleContext, src string) error {
	id := mctx.Descriptor().Identifier()
	err := r.submit(ctx, func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		if err := ctx.Err(); err != nil {
			return err
		}

		stop := r.watch(ctx)
		defer stop()

		return r.call(mctx, src)
	})
	if err != nil {
		return &extension.ExecutionError{Identifier: id, Err: err}
	}
	return nil
}

func (r *Runtime) call(mctx ports.ModuleContext, src string) error {
	args := make([]goja.Value, 0, len(moduleParams)+1)
	for _, p := range moduleParams {
		args = append(args, r.vm.ToValue(p))
	}
	args = append(args, r.vm.ToValue(src))

	fnObj, err := r.vm.New(r.vm.Get("Function"), args...)
	if err != nil {
		return unwrapInterrupt(err)
	}
	fn, ok := goja.AssertFunction(fnObj)
	if !ok {
		return fmt.Errorf("compiled module is not callable")
	}

	_, err = fn(goja.Undefined(),
		newConsole(r.vm, mctx.Logger()),
		newLoaderInfo(r.vm, mctx.Descriptor()),
		newHostBridge(r.vm, mctx),
	)
	return unwrapInterrupt(err)
}

// watch interrupts the VM when ctx ends or the timeout elapses
func (r *Runtime) watch(ctx context.Context) (stop func()) {
	r.vm.ClearInterrupt()

	var timer *time.Timer
	var timeout <-chan time.Time
	if r.timeout > 0 {
		timer = time.NewTimer(r.timeout)
		timeout = timer.C
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-timeout:
			r.vm.Interrupt(ErrTimeout)
		case <-done:
		}
	}()

	return func() {
		close(done)
		<-exited
		if timer != nil {
			timer.Stop()
		}
		r.vm.ClearInterrupt()
	}
}

func unwrapInterrupt(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return fmt.Errorf("interrupted: %w", cause)
		}
		return fmt.Errorf("interrupted: %v", interrupted.Value())
	}
	return err
}

// Global exports a value from the shared global scope
func (r *Runtime) Global(name string) (interface{}, error) {
	var out interface{}
	err := r.submit(context.Background(), func() error {
		v := r.vm.GlobalObject().Get(name)
		if v != nil {
			out = v.Export()
		}
		return nil
	})
	return out, err
}

// Close stops the loop goroutine; a running module is interrupted first.
func (r *Runtime) Close() error {
	r.closeOnce.Do(func() {
		r.vm.Interrupt(ErrClosed)
		close(r.quit)
	})
	<-r.stopped
	return nil
}

var _ ports.ScriptRuntime = (*Runtime)(nil)
