package spibus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sigurn/crc8"
)

type fakePort struct {
	written bytes.Buffer
	resp    *bytes.Reader
	closed  bool
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.resp.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }
func (p *fakePort) Close() error                { p.closed = true; return nil }

func bridgeResponse(status byte, payload []byte) []byte {
	body := append([]byte{status, byte(len(payload))}, payload...)
	frame := append([]byte{bridgeRespSync}, body...)
	return append(frame, crc8.Checksum(body, bridgeCRC))
}

func TestBridgeTx(t *testing.T) {
	port := &fakePort{resp: bytes.NewReader(bridgeResponse(0, []byte{0xFF, 0x70}))}
	b := NewBridge(port)

	r := make([]byte, 2)
	if err := b.Tx(context.Background(), []byte{0xF5, 0x00}, r); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r, []byte{0xFF, 0x70}) {
		t.Errorf("r = %#v", r)
	}

	req := port.written.Bytes()
	want := []byte{bridgeReqSync, 2, 0xF5, 0x00}
	if !bytes.Equal(req[:4], want) || len(req) != 5 {
		t.Fatalf("request %#v", req)
	}
	if req[4] != crc8.Checksum([]byte{2, 0xF5, 0x00}, bridgeCRC) {
		t.Errorf("request crc 0x%02X", req[4])
	}

	if err := b.Close(); err != nil || !port.closed {
		t.Errorf("Close() = %v, closed=%v", err, port.closed)
	}
}

func TestBridgeErrors(t *testing.T) {
	corrupt := bridgeResponse(0, []byte{0x00, 0x70})
	corrupt[len(corrupt)-1] ^= 0xFF

	tests := []struct {
		name string
		resp []byte
		want error
	}{
		{"crc", corrupt, ErrBridgeCRC},
		{"sync", []byte{0x00, 0x01, 0x02}, ErrBridgeSync},
		{"length", bridgeResponse(0, []byte{0x70}), ErrBridgeLength},
		{"status", bridgeResponse(0x03, []byte{0x00, 0x00}), ErrBridgeStatus},
		{"short", []byte{bridgeRespSync, 0}, io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBridge(&fakePort{resp: bytes.NewReader(tt.resp)})
			err := b.Tx(context.Background(), []byte{0xF5, 0x00}, make([]byte, 2))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBridgeResync(t *testing.T) {
	var stream []byte
	stream = append(stream, 0x00, 0xFF)
	stream = append(stream, bridgeResponse(0, []byte{0x00, 0x70})...)
	stream = append(stream, 0x13)
	stream = append(stream, bridgeResponse(0, []byte{0x00, 0x71})...)
	b := NewBridge(&fakePort{resp: bytes.NewReader(stream)})

	for i, want := range []byte{0x70, 0x71} {
		r := make([]byte, 2)
		if err := b.Tx(context.Background(), []byte{0xF5, 0x00}, r); err != nil {
			t.Fatalf("Tx %d: %v", i, err)
		}
		if r[1] != want {
			t.Errorf("Tx %d: r = %#v", i, r)
		}
	}
}

func TestBridgeRecoversAfterCRCError(t *testing.T) {
	corrupt := bridgeResponse(0, []byte{0x00, 0x70})
	corrupt[len(corrupt)-1] ^= 0xFF
	stream := append(corrupt, bridgeResponse(0, []byte{0x00, 0x70})...)
	b := NewBridge(&fakePort{resp: bytes.NewReader(stream)})

	ctx := context.Background()
	if err := b.Tx(ctx, []byte{0xF5, 0x00}, make([]byte, 2)); !errors.Is(err, ErrBridgeCRC) {
		t.Fatalf("first Tx err = %v", err)
	}
	r := make([]byte, 2)
	if err := b.Tx(ctx, []byte{0xF5, 0x00}, r); err != nil {
		t.Fatal(err)
	}
	if r[1] != 0x70 {
		t.Errorf("r = %#v", r)
	}
}

func TestBridgeFrameSize(t *testing.T) {
	b := NewBridge(&fakePort{resp: bytes.NewReader(nil)})
	ctx := context.Background()
	if err := b.Tx(ctx, nil, nil); err != ErrBridgeFrameSize {
		t.Errorf("empty: %v", err)
	}
	big := make([]byte, MaxBridgePayload+1)
	if err := b.Tx(ctx, big, make([]byte, len(big))); err != ErrBridgeFrameSize {
		t.Errorf("oversize: %v", err)
	}
	if err := b.Tx(ctx, []byte{1, 2}, make([]byte, 1)); err != ErrBridgeFrameSize {
		t.Errorf("mismatched r: %v", err)
	}
}

func TestBridgeCancelled(t *testing.T) {
	port := &fakePort{resp: bytes.NewReader(nil)}
	b := NewBridge(port)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Tx(ctx, []byte{0xF5, 0}, make([]byte, 2)); err != context.Canceled {
		t.Errorf("err = %v", err)
	}
	if port.written.Len() != 0 {
		t.Error("request written on a cancelled context")
	}
}
