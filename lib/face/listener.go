// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package face

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// PacketHandler receives every frame read from an accepted face. It is
// called on the face's reader goroutine; the daemon's handler posts the
// work onto the event loop and returns.
type PacketHandler func(from Face, wire []byte)

// Listener accepts StreamFace connections on a Unix socket.
type Listener struct {
	socketPath string
	handler    PacketHandler
	faces      *Table
	logger     *slog.Logger
	onClose    func(faceID uint64)

	nextID atomic.Uint64

	// activeConnections tracks reader goroutines. Serve waits for all
	// of them before returning.
	activeConnections sync.WaitGroup

	ready     chan struct{}
	readyOnce sync.Once
}

// NewListener creates a listener for socketPath. Accepted faces are
// registered in faces for as long as their connection is open.
func NewListener(socketPath string, faces *Table, handler PacketHandler, logger *slog.Logger) *Listener {
	l := &Listener{
		socketPath: socketPath,
		handler:    handler,
		faces:      faces,
		logger:     logger,
		ready:      make(chan struct{}),
	}
	l.nextID.Store(FirstFaceID - 1)
	return l
}

// OnClose sets a callback run on the face's reader goroutine after a
// face has been removed from the table. Call before Serve.
func (l *Listener) OnClose(callback func(faceID uint64)) { l.onClose = callback }

// Ready is closed once the socket is accepting connections.
func (l *Listener) Ready() <-chan struct{} { return l.ready }

// Serve accepts connections until ctx is cancelled, then closes every
// open face and waits for the reader goroutines to finish.
//
// Any existing socket file at the configured path is removed before
// listening. The socket file is removed on return.
func (l *Listener) Serve(ctx context.Context) error {
	if err := os.Remove(l.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", l.socketPath, err)
	}

	listener, err := net.Listen("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(l.socketPath)
	}()

	var (
		openMu sync.Mutex
		open   = make(map[uint64]*StreamFace)
	)

	// Unblock Accept and every pending read when the context is
	// cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
		openMu.Lock()
		for _, f := range open {
			f.Close()
		}
		openMu.Unlock()
	}()

	l.logger.Info("face listener ready", "path", l.socketPath)
	l.readyOnce.Do(func() { close(l.ready) })

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			l.logger.Error("accept failed", "error", err)
			continue
		}

		f := NewStreamFace(l.nextID.Add(1), conn)
		openMu.Lock()
		if ctx.Err() != nil {
			openMu.Unlock()
			f.Close()
			break
		}
		open[f.ID()] = f
		openMu.Unlock()
		l.faces.Add(f)

		l.activeConnections.Add(1)
		go func() {
			defer l.activeConnections.Done()
			defer func() {
				l.faces.Remove(f.ID())
				openMu.Lock()
				delete(open, f.ID())
				openMu.Unlock()
				f.Close()
				if l.onClose != nil {
					l.onClose(f.ID())
				}
			}()
			l.readFace(ctx, f)
		}()
	}

	l.activeConnections.Wait()
	return nil
}

func (l *Listener) readFace(ctx context.Context, f *StreamFace) {
	l.logger.Debug("face opened", "face", f.ID())
	for {
		wire, err := f.ReadPacket()
		if err != nil {
			switch {
			case ctx.Err() != nil, peerClosed(err):
				l.logger.Debug("face closed", "face", f.ID())
			default:
				// A framing error leaves the stream unsynchronised.
				l.logger.Warn("closing face after read error", "face", f.ID(), "error", err)
			}
			return
		}
		l.handler(f, wire)
	}
}

// peerClosed reports whether err is an ordinary end of the connection
// rather than a protocol problem.
func peerClosed(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}
