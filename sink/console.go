package sink

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"pmsensor"
)

// Console prints measurements with colors :)
type Console struct {
	w           io.Writer
	measurement *color.Color
	note        *color.Color
}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = color.Output
	}
	return &Console{
		w:           w,
		measurement: color.New(color.FgHiYellow),
		note:        color.New(color.FgRed),
	}
}

func (p *Console) Put(t time.Time, meas pmsensor.Measurement) error {
	_, err := p.measurement.Fprintln(p.w, FormatLine(t, meas))
	return err
}

func (p *Console) Note(t time.Time, msg string) error {
	_, err := p.note.Fprintln(p.w, FormatTime(t)+"\t"+msg)
	return err
}

// Plain line without timestamp. Like help texts
func (p *Console) Println(msg string) {
	fmt.Fprintln(p.w, msg)
}

func (p *Console) Close() error {
	return nil
}
