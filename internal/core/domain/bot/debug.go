package bot

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"runtime/metrics"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog/log"
)

type Debug struct {
	Base

	textSender port.TextSender
}

func NewDebugFactory(sender port.TextSender) port.HandlerFactory {
	return func() port.Handler { return &Debug{textSender: sender} }
}

func (d *Debug) Definition() domain.Definition {
	return domain.Definition{
		Identity:    "debug",
		Aliases:     []string{"debug"},
		Name:        "Debug",
		Description: "Replies with runtime statistics of the bot process.",
		Unique:      true,
		Match:       domain.MatchExact,
		Triggers:    []string{"!debug"},
	}
}

const kb = 1024
const debugTemplate = `allocated mem: %d KB
threads running: %d
heap: %d KB
stack: %d KB
compiled with %s for %s-%s
thread: %s
`
const metricCount = 3

func (d *Debug) Handle(ctx context.Context) error {
	l := log.With().
		Str("messageId", d.Message.ID).
		Str("threadId", d.Message.ThreadID).
		Str("handler", "debug").
		Logger()

	data := make([]metrics.Sample, metricCount)
	data[0] = metrics.Sample{Name: "/memory/classes/heap/objects:bytes"}
	data[1] = metrics.Sample{Name: "/memory/classes/heap/stacks:bytes"}
	data[2] = metrics.Sample{Name: "/memory/classes/total:bytes"}

	metrics.Read(data)

	for _, sample := range data {
		l.Debug().Str("name", sample.Name).Msgf("%d", sample.Value.Uint64())
	}

	l.Info().Msg("handling request")

	var goos, goarch string
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "GOOS":
				goos = setting.Value
			case "GOARCH":
				goarch = setting.Value
			}
		}
	}

	_, err := d.textSender.SendMessageReply(ctx, &d.Message,
		fmt.Sprintf(
			debugTemplate,
			data[2].Value.Uint64()/kb,
			runtime.NumGoroutine(),
			data[0].Value.Uint64()/kb,
			data[1].Value.Uint64()/kb,
			runtime.Version(), goos, goarch,
			d.Thread.ID,
		))
	if err != nil {
		d.ReleaseCooldown()
		return executionError("sending debug info", err)
	}

	return nil
}
