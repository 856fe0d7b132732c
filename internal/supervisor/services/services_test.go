// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*RouterService)(nil)
	_ suture.Service = (*BadgerGCService)(nil)
)

// =====================================================
// HTTPServerService
// =====================================================

// mockHTTPServer is a test double for the HTTPServer interface.
type mockHTTPServer struct {
	listenErr     error
	shutdownErr   error
	started       chan struct{}
	stopCh        chan struct{}
	shutdownCount atomic.Int32
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{started: make(chan struct{}, 1), stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.started <- struct{}{}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	t.Parallel()
	svc := NewHTTPServerService(newMockHTTPServer(), 0)
	if svc.shutdownTimeout != 10*time.Second || svc.String() != "http-server" {
		t.Errorf("svc = %+v", svc)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown on cancel", func(t *testing.T) {
		t.Parallel()
		server := newMockHTTPServer()
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		<-server.started
		cancel()

		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if server.shutdownCount.Load() != 1 {
			t.Errorf("Shutdown called %d times", server.shutdownCount.Load())
		}
	})

	t.Run("listen failure is returned", func(t *testing.T) {
		t.Parallel()
		server := newMockHTTPServer()
		server.listenErr = errors.New("address already in use")
		svc := NewHTTPServerService(server, time.Second)

		err := svc.Serve(context.Background())
		if err == nil || !errors.Is(err, server.listenErr) {
			t.Errorf("Serve() = %v", err)
		}
	})

	t.Run("shutdown failure is returned", func(t *testing.T) {
		t.Parallel()
		server := newMockHTTPServer()
		server.shutdownErr = errors.New("deadline exceeded")
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()
		<-server.started
		cancel()

		if err := <-errCh; !errors.Is(err, server.shutdownErr) {
			t.Errorf("Serve() = %v", err)
		}
	})
}

// =====================================================
// RouterService
// =====================================================

func TestRouterService_DeliversAndRestarts(t *testing.T) {
	t.Parallel()

	logger := watermill.NopLogger{}
	var (
		mu      sync.Mutex
		current *gochannel.GoChannel
		builds  atomic.Int32
		handled = make(chan string, 4)
	)
	factory := func() (*message.Router, error) {
		builds.Add(1)
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 4}, logger)
		mu.Lock()
		current = ch
		mu.Unlock()

		router, err := message.NewRouter(message.RouterConfig{CloseTimeout: time.Second}, logger)
		if err != nil {
			return nil, err
		}
		router.AddConsumerHandler("test", "topic", ch, func(msg *message.Message) error {
			handled <- msg.UUID
			return nil
		})
		return router, nil
	}

	svc := NewRouterService("event-router", factory)
	if svc.String() != "event-router" {
		t.Errorf("String() = %s", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-svc.Running():
	case <-time.After(2 * time.Second):
		t.Fatal("router did not start")
	}

	mu.Lock()
	ch := current
	mu.Unlock()
	if err := ch.Publish("topic", message.NewMessage("m1", []byte("{}"))); err != nil {
		t.Fatal(err)
	}
	select {
	case id := <-handled:
		if id != "m1" {
			t.Errorf("handled %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message not handled")
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}

	// A second run builds a new router.
	ctx2, cancel2 := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel2()
	if err := svc.Serve(ctx2); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second Serve() = %v", err)
	}
	if builds.Load() != 2 {
		t.Errorf("factory called %d times, want 2", builds.Load())
	}
}

func TestRouterService_FactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	svc := NewRouterService("event-router", func() (*message.Router, error) { return nil, boom })
	if err := svc.Serve(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Serve() = %v, want boom", err)
	}
}

// =====================================================
// BadgerGCService
// =====================================================

type fakeGC struct {
	mu    sync.Mutex
	errs  []error // returned in order, then ErrNoRewrite
	calls int
}

func (f *fakeGC) RunValueLogGC(float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) == 0 {
		return badger.ErrNoRewrite
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeGC) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNewBadgerGCService_Defaults(t *testing.T) {
	t.Parallel()
	svc := NewBadgerGCService(&fakeGC{}, 0, 2, zerolog.Nop())
	if svc.interval != 5*time.Minute || svc.ratio != 0.5 || svc.String() != "badger-gc" {
		t.Errorf("svc = interval %s ratio %v", svc.interval, svc.ratio)
	}
}

func TestBadgerGCService_CollectsUntilNoRewrite(t *testing.T) {
	t.Parallel()

	gc := &fakeGC{errs: []error{nil, nil}}
	svc := NewBadgerGCService(gc, 10*time.Millisecond, 0.5, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for gc.callCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// Two rewrites and the terminating ErrNoRewrite in the first pass.
	if gc.callCount() < 3 {
		t.Fatalf("RunValueLogGC called %d times", gc.callCount())
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
}

func TestBadgerGCService_StopsOnClosedDB(t *testing.T) {
	t.Parallel()

	gc := &fakeGC{errs: []error{badger.ErrDBClosed}}
	svc := NewBadgerGCService(gc, 10*time.Millisecond, 0.5, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, badger.ErrDBClosed) {
		t.Errorf("Serve() = %v, want ErrDBClosed", err)
	}
}

func TestBadgerGCService_RealDB(t *testing.T) {
	t.Parallel()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	svc := NewBadgerGCService(db, time.Hour, 0.5, zerolog.Nop())
	if err := svc.collect(); err != nil {
		t.Errorf("collect() = %v", err)
	}
}
