package pmsensor

import (
	"fmt"
	"math"
)

// Measurement is one decoded data frame. Values in µg/m³ with 0.1 resolution
type Measurement struct {
	PM25 float64
	PM10 float64
}

// NOTICE: non calibrated values
func (p Measurement) String() string {
	return fmt.Sprintf("PM2.5= %.1fµg/m³ PM10= %.1fµg/m³", p.PM25, p.PM10)
}

/*
Normalized applies empirical humidity compensation, relative humidity in percent.
Coefficients from https://github.com/piotrkpaul/esp8266-sds011, not lab verified
*/
func (p Measurement) Normalized(humidity float64) Measurement {
	return Measurement{
		PM25: NormalizePM25(p.PM25, humidity),
		PM10: NormalizePM10(p.PM10, humidity),
	}
}

func NormalizePM25(pm25 float64, humidity float64) float64 {
	return pm25 / (1.0 + 0.48756*math.Pow(humidity/100.0, 8.60068))
}

func NormalizePM10(pm10 float64, humidity float64) float64 {
	return pm10 / (1.0 + 0.81559*math.Pow(humidity/100.0, 5.83411))
}
