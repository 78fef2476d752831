package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"pmsensor"
	"pmsensor/sink"
)

// sensorLink is the part of pmsensor.Link used here
type sensorLink interface {
	Open(port string) (bool, error)
	Close()
	IsOpen() bool
	Errors() <-chan error
}

type runner struct {
	port     string
	link     sensorLink
	notes    sink.Noter
	say      func(string)
	log      zerolog.Logger
	retryMin time.Duration
	retryMax time.Duration
}

func (p *runner) retryDelay() time.Duration {
	spread := int64(p.retryMax - p.retryMin)
	if spread <= 0 {
		return p.retryMin
	}
	return p.retryMin + time.Duration(rand.Int63n(spread+1))
}

func (p *runner) note(msg string) {
	if err := p.notes.Note(time.Now(), msg); err != nil {
		p.log.Error().Err(err).Msg("writing note")
	}
}

/*
loop has two modes. Init keeps opening port until it succeeds,
running waits until link reports that reopen failed
*/
func (p *runner) loop(ctx context.Context) {
	defer p.link.Close()
	for {
		if !p.link.IsOpen() {
			ok, errOpen := p.link.Open(p.port)
			if !ok {
				p.log.Debug().Err(errOpen).Str("port", p.port).Msg("open failed")
				p.note(fmt.Sprintf("Can not open port %v!", p.port))
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.retryDelay()):
				}
				continue
			}
			p.log.Info().Str("port", p.port).Msg("port open")
			p.say(fmt.Sprintf("Port %v is open.", p.port))
		}

		select {
		case <-ctx.Done():
			return
		case errLink := <-p.link.Errors():
			p.log.Warn().Err(errLink).Str("port", p.port).Msg("link lost")
			p.note(fmt.Sprintf("Lost port %v", p.port))
		}
	}
}

func newLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(level)
}

func openSinks(cfg config, console *sink.Console, logger zerolog.Logger) (*sink.Fanout, error) {
	sinks := []sink.Sink{console}
	if cfg.LogFile != "" {
		lf, err := sink.OpenLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, lf)
	}
	if cfg.MQTTBroker != "" {
		hostname, _ := os.Hostname()
		mq, err := sink.NewMQTT(cfg.MQTTBroker, cfg.MQTTTopic, "readpm-"+hostname)
		if err != nil {
			return nil, multierror.Append(err, sink.NewFanout(logger, sinks...).Close())
		}
		sinks = append(sinks, mq)
	}
	return sink.NewFanout(logger, sinks...), nil
}

func run(ctx context.Context, cfg config) error {
	logger := newLogger(cfg.LogLevel)
	console := sink.NewConsole(color.Output)

	out, errSinks := openSinks(cfg, console, logger)
	if errSinks != nil {
		return errSinks
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, quit := context.WithCancel(ctx)
	defer quit()

	keys, errKeys := openKeys()
	if errKeys != nil {
		logger.Warn().Err(errKeys).Msg("no terminal, use ctrl+c to quit")
	} else {
		defer keys.Close()
		go keys.watch(ctx, quit, console.Println)
	}

	console.Println(sink.HEADERLINE)

	link := pmsensor.NewLink(out.Link(),
		pmsensor.WithOpener(openerFor(cfg.Backend)),
		pmsensor.WithLogger(logger.With().Str("port", cfg.Port).Logger()))

	r := &runner{
		port:     cfg.Port,
		link:     link,
		notes:    out,
		say:      console.Println,
		log:      logger,
		retryMin: cfg.RetryMin,
		retryMax: cfg.RetryMax,
	}
	r.loop(ctx)

	return out.Close()
}
