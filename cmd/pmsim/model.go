package main

import (
	"math"
	"math/rand"
	"time"

	"pmsensor"
)

const (
	INTERVALIDLECHARS = 1500 * time.Millisecond
	IDLEJUNKSIZE      = 9
	INCOMPLETECUT     = 4
)

// SignalModel works as floats, registers report as 10*
type SignalModel struct {
	Noise     float64       //in range [value-noise, value+noise]
	Offset    float64
	Period    time.Duration //sine period
	Phase     time.Duration
	Amplitude float64       //offset-amplitude to offset+amplitude
}

func (p *SignalModel) Calc(t time.Time, rnd *rand.Rand) float64 {
	wave := 0.0
	if 0 < p.Period {
		pos := math.Mod(float64(t.UnixMilli()+p.Phase.Milliseconds()), float64(p.Period.Milliseconds()))
		wave = math.Sin(2.0*math.Pi*pos/float64(p.Period.Milliseconds())) * p.Amplitude
	}
	return math.Max(0, (rnd.Float64()*2.0-1.0)*p.Noise+wave+p.Offset)
}

// Register value is tenths of µg/m³, saturates at 999.9
func toRegister(v float64) uint16 {
	return uint16(math.Round(math.Min(v, 999.9) * 10))
}

// ConnectivityModel allows simulating bad communication conditions
type ConnectivityModel struct {
	InvalidCRC         bool
	IdleCharacters     bool //Random line noise in between frames
	IncompletePackages bool //Not all bytes are coming
}

//Trash signal only if needed
func (p *ConnectivityModel) TrashSignal(frame []byte) []byte {
	arr := append([]byte{}, frame...)
	if p.InvalidCRC {
		arr[len(arr)-2]++
	}
	if p.IncompletePackages {
		arr = arr[0 : len(arr)-INCOMPLETECUT]
	}
	return arr
}

func idleJunk(rnd *rand.Rand) []byte {
	junk := make([]byte, IDLEJUNKSIZE)
	rnd.Read(junk)
	return junk
}

type SimSensor struct {
	Id             uint16
	SmallParticles SignalModel
	LargeParticles SignalModel
	Connectivity   ConnectivityModel

	rnd          *rand.Rand
	lastJunkTime time.Time
}

func NewSimSensor(id uint16, seed int64) *SimSensor {
	return &SimSensor{
		Id:             id,
		SmallParticles: SignalModel{Noise: 1.5, Offset: 12, Period: 10 * time.Minute, Amplitude: 8},
		LargeParticles: SignalModel{Noise: 3, Offset: 25, Period: 17 * time.Minute, Amplitude: 15},
		rnd:            rand.New(rand.NewSource(seed)),
	}
}

// Measure returns bytes to send at t. Junk is prepended when idle characters are due
func (p *SimSensor) Measure(t time.Time) (pmsensor.Measurement, []byte) {
	pm25 := toRegister(p.SmallParticles.Calc(t, p.rnd))
	pm10 := toRegister(p.LargeParticles.Calc(t, p.rnd))
	meas := pmsensor.Measurement{PM25: float64(pm25) / 10, PM10: float64(pm10) / 10}

	var out []byte
	if p.Connectivity.IdleCharacters && INTERVALIDLECHARS <= t.Sub(p.lastJunkTime) {
		out = append(out, idleJunk(p.rnd)...)
		p.lastJunkTime = t
	}
	out = append(out, p.Connectivity.TrashSignal(pmsensor.EncodeFrame(pm25, pm10, p.Id))...)
	return meas, out
}
