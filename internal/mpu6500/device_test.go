package mpu6500

import (
	"bytes"
	"context"
	"testing"
)

func TestDevIsConnected(t *testing.T) {
	ctx := context.Background()
	if !New(&fakeBus{resp: [][]byte{{0x00, 0x70}}}).IsConnected(ctx) {
		t.Error("IsConnected() = false for identity 0x70")
	}
	if New(&fakeBus{resp: [][]byte{{0x00, 0x00}}}).IsConnected(ctx) {
		t.Error("IsConnected() = true for identity 0x00")
	}
	if New(&fakeBus{err: errTransport}).IsConnected(ctx) {
		t.Error("IsConnected() = true on transport error")
	}
}

func TestDevReadRaw(t *testing.T) {
	dev := &fakeBus{resp: [][]byte{
		sampleResp(0x12, 0x34, 0xFF, 0xFF, 0x80, 0x00),
		sampleResp(0x00, 0x01, 0x7F, 0xFF, 0xFF, 0xFE),
	}}
	d := New(dev)
	ctx := context.Background()

	a, err := d.ReadAcceleration(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := (RawAcceleration{X: 4660, Y: -1, Z: -32768}); a != want {
		t.Errorf("ReadAcceleration() = %+v, want %+v", a, want)
	}

	g, err := d.ReadGyro(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := (RawGyro{X: 1, Y: 32767, Z: -2}); g != want {
		t.Errorf("ReadGyro() = %+v, want %+v", g, want)
	}

	if dev.frames[0][0] != 0xBB || dev.frames[1][0] != 0xC3 {
		t.Errorf("frames %#v", dev.frames)
	}
}

func TestDevScales(t *testing.T) {
	dev := &fakeBus{}
	d := New(dev)
	ctx := context.Background()

	if d.AccelScale() != DefaultAccelScale || d.GyroScale() != DefaultGyroScale {
		t.Fatalf("defaults %s, %s", d.AccelScale(), d.GyroScale())
	}
	if err := d.SetAccelScale(ctx, Accel8G); err != nil {
		t.Fatal(err)
	}
	if err := d.SetGyroScale(ctx, Gyro500DPS); err != nil {
		t.Fatal(err)
	}
	if d.AccelScale() != Accel8G || d.GyroScale() != Gyro500DPS {
		t.Errorf("scales %s, %s", d.AccelScale(), d.GyroScale())
	}
	if !bytes.Equal(dev.frames[0], []byte{0x1C, 0x10}) || !bytes.Equal(dev.frames[1], []byte{0x1B, 0x08}) {
		t.Errorf("frames %#v", dev.frames)
	}

	dev.err = errTransport
	if err := d.SetAccelScale(ctx, Accel16G); err != errTransport {
		t.Errorf("err = %v", err)
	}
	if d.AccelScale() != Accel8G {
		t.Errorf("failed write changed scale to %s", d.AccelScale())
	}
	if _, err := d.ReadGyro(ctx); err != errTransport {
		t.Errorf("ReadGyro err = %v", err)
	}
}
