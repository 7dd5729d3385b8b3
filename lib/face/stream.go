// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package face

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/tlv"
)

// StreamFace carries TLV-framed packets over a stream connection.
// Send may be called from any goroutine; ReadPacket and the request
// helpers must be called from one reader at a time.
type StreamFace struct {
	id     uint64
	conn   net.Conn
	reader *bufio.Reader

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewStreamFace wraps conn.
func NewStreamFace(id uint64, conn net.Conn) *StreamFace {
	return &StreamFace{
		id:     id,
		conn:   conn,
		reader: bufio.NewReaderSize(conn, tlv.MaxPacketSize),
	}
}

// Dial connects to the daemon's Unix socket. Client faces have id 0.
func Dial(ctx context.Context, socketPath string) (*StreamFace, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", socketPath, err)
	}
	return NewStreamFace(0, conn), nil
}

func (f *StreamFace) ID() uint64 { return f.id }

// Send writes one frame. wire must be a single complete TLV element.
func (f *StreamFace) Send(wire []byte) error {
	if len(wire) > tlv.MaxPacketSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(wire))
	}
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if _, err := f.conn.Write(wire); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("face %d: writing frame: %w", f.id, err)
	}
	return nil
}

// ReadPacket reads the next frame. Returns io.EOF when the peer closed
// the connection cleanly between frames.
func (f *StreamFace) ReadPacket() ([]byte, error) {
	header := make([]byte, 0, 18)
	header, typ, err := readVarNumber(f.reader, header)
	if err != nil {
		return nil, err
	}
	header, length, err := readVarNumber(f.reader, header)
	if err != nil {
		return nil, unexpectedEOF(err)
	}
	if length > uint64(tlv.MaxPacketSize-len(header)) {
		return nil, fmt.Errorf("%w: element %d declares %d bytes", ErrFrameTooLarge, typ, length)
	}

	frame := make([]byte, len(header)+int(length))
	copy(frame, header)
	if _, err := io.ReadFull(f.reader, frame[len(header):]); err != nil {
		return nil, unexpectedEOF(err)
	}
	return frame, nil
}

// Close closes the connection. Safe to call more than once.
func (f *StreamFace) Close() error {
	f.closeOnce.Do(func() {
		f.closeErr = f.conn.Close()
	})
	return f.closeErr
}

// readVarNumber reads one VAR-NUMBER from r, appending its encoded
// bytes to header.
func readVarNumber(r *bufio.Reader, header []byte) ([]byte, uint64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return header, 0, err
	}
	header = append(header, first)

	var size int
	switch first {
	case 253:
		size = 2
	case 254:
		size = 4
	case 255:
		size = 8
	default:
		return header, uint64(first), nil
	}

	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:size]); err != nil {
		return header, 0, unexpectedEOF(err)
	}
	header = append(header, buf[:size]...)

	switch size {
	case 2:
		return header, uint64(binary.BigEndian.Uint16(buf[:2])), nil
	case 4:
		return header, uint64(binary.BigEndian.Uint32(buf[:4])), nil
	default:
		return header, binary.BigEndian.Uint64(buf[:8]), nil
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Fetch sends interest and returns the first Data that satisfies it.
// Other packets read meanwhile are discarded. The context deadline, if
// any, bounds the wait.
func (f *StreamFace) Fetch(ctx context.Context, interest *packet.Interest) (*packet.Data, error) {
	stop := f.bindContext(ctx)
	defer stop()

	if err := f.Send(interest.Encode()); err != nil {
		return nil, err
	}
	for {
		data, err := f.readData(ctx)
		if err != nil {
			return nil, err
		}
		if satisfies(data.Name, interest) {
			return data, nil
		}
	}
}

// Command sends a command Interest and collects its response: either
// one Data named exactly like the Interest, or segments under it
// through the final block. Segments may arrive in any order.
func (f *StreamFace) Command(ctx context.Context, interest *packet.Interest) ([]*packet.Data, error) {
	stop := f.bindContext(ctx)
	defer stop()

	if err := f.Send(interest.Encode()); err != nil {
		return nil, err
	}

	var (
		segments []*packet.Data
		seen     = make(map[uint64]bool)
		last     = int64(-1)
	)
	for {
		data, err := f.readData(ctx)
		if err != nil {
			return nil, err
		}
		if data.Name.Equal(interest.Name) {
			return []*packet.Data{data}, nil
		}
		if data.Name.Len() != interest.Name.Len()+1 || !interest.Name.IsPrefixOf(data.Name) {
			continue
		}
		index, err := data.Name.At(-1).ToSegment()
		if err != nil || seen[index] {
			continue
		}
		seen[index] = true
		segments = append(segments, data)

		if data.FinalBlockID != nil {
			if final, err := data.FinalBlockID.ToSegment(); err == nil {
				last = int64(final)
			}
		}
		if last >= 0 && int64(len(segments)) > last {
			return segments, nil
		}
	}
}

func (f *StreamFace) readData(ctx context.Context) (*packet.Data, error) {
	for {
		wire, err := f.ReadPacket()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if _, ok := ctx.Deadline(); ok && errors.Is(err, os.ErrDeadlineExceeded) {
				return nil, context.DeadlineExceeded
			}
			return nil, err
		}
		typ, err := packet.PeekType(wire)
		if err != nil || typ != packet.TypeData {
			continue
		}
		return packet.DecodeData(wire)
	}
}

// bindContext makes blocking reads observe ctx: its deadline becomes
// the read deadline, and cancellation expires the deadline so a
// blocked read returns.
func (f *StreamFace) bindContext(ctx context.Context) func() {
	if deadline, ok := ctx.Deadline(); ok {
		f.conn.SetReadDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		f.conn.SetReadDeadline(time.Unix(1, 0))
	})
	return func() {
		stop()
		f.conn.SetReadDeadline(time.Time{})
	}
}

// satisfies reports whether a Data named dataName answers interest.
func satisfies(dataName name.Name, interest *packet.Interest) bool {
	if interest.CanBePrefix {
		return interest.Name.IsPrefixOf(dataName)
	}
	return interest.Name.Equal(dataName)
}
