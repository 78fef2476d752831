/*
Package sink has event sinks for measurements coming from pmsensor.Link.

Output line format is kept same as old logs: "dd.MM.yyyy HH:mm:ss<TAB>PM2.5<TAB>PM10"
*/
package sink

import (
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"pmsensor"
)

const TIMEFORMAT = "02.01.2006 15:04:05"

const HEADERLINE = "Date et heure\tPM2.5 [μg/m³]\tPM10 [μg/m³]"

type Sink interface {
	Put(t time.Time, meas pmsensor.Measurement) error
	Close() error
}

// Noter is optional. Sinks that can show free text notes like "can not open port"
type Noter interface {
	Note(t time.Time, msg string) error
}

func FormatTime(t time.Time) string {
	return t.Local().Format(TIMEFORMAT)
}

func FormatLine(t time.Time, meas pmsensor.Measurement) string {
	return FormatTime(t) + "\t" + formatValue(meas.PM25) + "\t" + formatValue(meas.PM10)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fanout passes every measurement to all sinks. One failing sink does not stop others
type Fanout struct {
	sinks []Sink
	log   zerolog.Logger
	now   func() time.Time
}

func NewFanout(logger zerolog.Logger, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, log: logger, now: time.Now}
}

// Link returns callback to be given to pmsensor.NewLink
func (p *Fanout) Link() pmsensor.Sink {
	return func(meas pmsensor.Measurement) {
		if err := p.Put(p.now(), meas); err != nil {
			p.log.Error().Err(err).Msg("sink failed")
		}
	}
}

func (p *Fanout) Put(t time.Time, meas pmsensor.Measurement) error {
	var result error
	for _, s := range p.sinks {
		if err := s.Put(t, meas); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

func (p *Fanout) Note(t time.Time, msg string) error {
	var result error
	for _, s := range p.sinks {
		if noter, ok := s.(Noter); ok {
			if err := noter.Note(t, msg); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result
}

func (p *Fanout) Close() error {
	var result error
	for _, s := range p.sinks {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}
