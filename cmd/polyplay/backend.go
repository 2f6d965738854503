package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gordonklaus/portaudio"

	"github.com/justyntemme/polyvoice/pkg/framework/host"
)

var ErrUnknownBackend = errors.New("unknown audio backend")

// backend plays a Driver until closed.
type backend interface {
	Start(d *host.Driver) error
	Close() error
}

func newBackend(name string) (backend, error) {
	switch name {
	case "oto":
		return &otoBackend{}, nil
	case "portaudio":
		return &portaudioBackend{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownBackend)
	}
}

// otoBackend lets the oto player pull float32 frames from the Driver.
type otoBackend struct {
	ctx    *oto.Context
	player *oto.Player
}

func (b *otoBackend) Start(d *host.Driver) error {
	env := d.Environment()
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(env.SampleRate),
		ChannelCount: env.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(float64(env.MaxSamplesPerCall) / env.SampleRate * float64(time.Second)),
	})
	if err != nil {
		return fmt.Errorf("oto: %w", err)
	}
	<-ready

	b.ctx = ctx
	b.player = ctx.NewPlayer(d)
	b.player.Play()
	return nil
}

func (b *otoBackend) Close() error {
	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil
	return err
}

// portaudioBackend renders from the PortAudio stream callback.
type portaudioBackend struct {
	stream *portaudio.Stream
}

func (b *portaudioBackend) Start(d *host.Driver) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}

	env := d.Environment()
	stream, err := portaudio.OpenDefaultStream(0, env.Channels, env.SampleRate, env.MaxSamplesPerCall, func(out []float32) {
		d.Render(out)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("portaudio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("portaudio: start stream: %w", err)
	}
	b.stream = stream
	return nil
}

func (b *portaudioBackend) Close() error {
	if b.stream == nil {
		return nil
	}
	err := errors.Join(b.stream.Stop(), b.stream.Close(), portaudio.Terminate())
	b.stream = nil
	return err
}
