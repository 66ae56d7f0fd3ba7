// Package mixer adjusts host output volume through PulseAudio.
package mixer

import (
	"context"
	"fmt"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// volumeNorm is PA_VOLUME_NORM, the 100% software volume.
const volumeNorm = 0x10000

// DefaultStepPercent matches the historical deck volume increment.
const DefaultStepPercent = 10

// Pulse applies volume and mute changes to the default sink. Each operation
// opens a short-lived client connection, mirroring the appliance's stateless
// exchange model.
type Pulse struct {
	stepPercent int
}

// NewPulse builds a mixer stepping by stepPercent per volume command.
func NewPulse(stepPercent int) *Pulse {
	if stepPercent <= 0 {
		stepPercent = DefaultStepPercent
	}
	return &Pulse{stepPercent: stepPercent}
}

// VolumeUp raises the default sink volume by one step.
func (p *Pulse) VolumeUp(_ context.Context) error {
	return p.adjust(p.stepPercent)
}

// VolumeDown lowers the default sink volume by one step.
func (p *Pulse) VolumeDown(_ context.Context) error {
	return p.adjust(-p.stepPercent)
}

// ToggleMute flips the default sink mute state.
func (p *Pulse) ToggleMute(_ context.Context) error {
	client, sinkName, err := connectDefaultSink()
	if err != nil {
		return err
	}
	defer client.Close()

	var info pulseproto.GetSinkInfoReply
	if err := client.RawRequest(&pulseproto.GetSinkInfo{
		SinkIndex: pulseproto.Undefined,
		SinkName:  sinkName,
	}, &info); err != nil {
		return fmt.Errorf("read sink info: %w", err)
	}

	if err := client.RawRequest(&pulseproto.SetSinkMute{
		SinkIndex: pulseproto.Undefined,
		SinkName:  sinkName,
		Mute:      !info.Mute,
	}, nil); err != nil {
		return fmt.Errorf("set sink mute: %w", err)
	}
	return nil
}

func (p *Pulse) adjust(deltaPercent int) error {
	client, sinkName, err := connectDefaultSink()
	if err != nil {
		return err
	}
	defer client.Close()

	var info pulseproto.GetSinkInfoReply
	if err := client.RawRequest(&pulseproto.GetSinkInfo{
		SinkIndex: pulseproto.Undefined,
		SinkName:  sinkName,
	}, &info); err != nil {
		return fmt.Errorf("read sink info: %w", err)
	}

	volumes := make(pulseproto.ChannelVolumes, len(info.ChannelVolumes))
	for i, volume := range info.ChannelVolumes {
		volumes[i] = stepVolume(volume, deltaPercent)
	}

	if err := client.RawRequest(&pulseproto.SetSinkVolume{
		SinkIndex:      pulseproto.Undefined,
		SinkName:       sinkName,
		ChannelVolumes: volumes,
	}, nil); err != nil {
		return fmt.Errorf("set sink volume: %w", err)
	}
	return nil
}

func connectDefaultSink() (*pulse.Client, string, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName("remotedeck"))
	if err != nil {
		return nil, "", fmt.Errorf("connect pulse server: %w", err)
	}

	sink, err := client.DefaultSink()
	if err != nil {
		client.Close()
		return nil, "", fmt.Errorf("read default sink: %w", err)
	}
	return client, sink.ID(), nil
}

// Probe reports whether a Pulse server with a default sink is reachable.
func Probe() error {
	client, _, err := connectDefaultSink()
	if err != nil {
		return err
	}
	client.Close()
	return nil
}

// stepVolume applies a percent delta against PA_VOLUME_NORM, clamped to
// [0, 100%]. Amplified volumes above 100% are pulled back into range.
func stepVolume(current uint32, deltaPercent int) uint32 {
	step := int64(volumeNorm) * int64(deltaPercent) / 100
	next := int64(current) + step
	if next < 0 {
		return 0
	}
	if next > volumeNorm {
		return volumeNorm
	}
	return uint32(next)
}
