package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// ErrClosed is returned by Dispatch once Wait has been called
var ErrClosed = goerr.New("async group is closed")

// Group tracks dispatched handlers so shutdown can drain them. Once Wait is
// called the group stops accepting new handlers.
type Group struct {
	mu      sync.Mutex
	running int
	closed  bool
	idle    chan struct{}
}

func NewGroup() *Group {
	return &Group{idle: make(chan struct{})}
}

var defaultGroup = NewGroup()

// Dispatch runs handler on the default group
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) error {
	return defaultGroup.Dispatch(ctx, handler)
}

// Wait closes the default group and drains it
func Wait(ctx context.Context) error {
	return defaultGroup.Wait(ctx)
}

// Dispatch executes a handler function asynchronously with proper context and panic recovery
//
// Parameters:
//   - ctx: Original context (values will be preserved, but cancellation won't affect the async handler)
//   - handler: Function to execute asynchronously
//
// Behavior:
//   - Returns ErrClosed without running handler after Wait has been called
//   - Creates a new background context with preserved logger and Sentry hub
//   - Executes handler in a new goroutine tracked by Wait
//   - Recovers from panics, logs them and reports them to Sentry
//   - Logs errors returned by handler
func (g *Group) Dispatch(ctx context.Context, handler func(ctx context.Context) error) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		ctxlog.From(ctx).Warn("async handler rejected after shutdown began")
		return ErrClosed
	}
	g.running++
	g.mu.Unlock()

	newCtx := newBackgroundContext(ctx)

	go func() {
		defer g.done()
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger := ctxlog.From(newCtx)
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
				hubFrom(newCtx).CaptureException(fmt.Errorf("panic in async handler: %v", r))
			}
		}()

		if err := handler(newCtx); err != nil {
			logger := ctxlog.From(newCtx)
			logger.Error("error in async handler", "error", err)
		}
	}()

	return nil
}

func (g *Group) done() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running--
	if g.closed && g.running == 0 {
		close(g.idle)
	}
}

// Wait stops the group from accepting handlers and blocks until every
// dispatched handler has returned or ctx is done. It may be called again
// after a timeout.
func (g *Group) Wait(ctx context.Context) error {
	g.mu.Lock()
	if !g.closed {
		g.closed = true
		if g.running == 0 {
			close(g.idle)
		}
	}
	running := g.running
	g.mu.Unlock()

	select {
	case <-g.idle:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "async handlers still running", goerr.V("running", running))
	}
}

// newBackgroundContext creates a new background context preserving important values
//
// Preserved values:
//   - ctxlog logger
//   - Sentry hub (cloned)
//
// Returns: New context.Background() with preserved values
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()
	newCtx = ctxlog.With(newCtx, ctxlog.From(ctx))
	newCtx = sentry.SetHubOnContext(newCtx, hubFrom(ctx).Clone())
	return newCtx
}

func hubFrom(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}
