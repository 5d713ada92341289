package audio

import (
	"math"
	"slices"
)

// highPass applies a single-pole RC high-pass filter in place, attenuating
// low-frequency rumble (fans, handling noise) before the energy comparison.
func highPass(data []float32, cutoff float32, sampleRate int) {
	if len(data) == 0 {
		return
	}
	rc := 1.0 / (2.0 * math.Pi * float64(cutoff))
	dt := 1.0 / float64(sampleRate)
	alpha := float32(dt / (rc + dt))

	prev := data[0]
	y := data[0]
	for i := 1; i < len(data); i++ {
		cur := data[i]
		y = alpha * (y + cur - prev)
		prev = cur
		data[i] = y
	}
}

// Silent reports whether the trailing lastMs of samples is silence relative
// to the average energy of the whole window. When the window is not longer
// than the analysis tail there is nothing to compare against and the result
// is false ("not silent"); callers that need a reliable answer must supply
// a window longer than lastMs.
func Silent(samples []float32, sampleRate, lastMs int, threshold, freqThreshold float32) bool {
	nAll := len(samples)
	nLast := sampleRate * lastMs / 1000
	if nLast >= nAll {
		return false
	}

	if freqThreshold > 0 {
		work := slices.Clone(samples)
		highPass(work, freqThreshold, sampleRate)
		samples = work
	}

	var energyAll, energyLast float32
	for i, v := range samples {
		if v < 0 {
			v = -v
		}
		energyAll += v
		if i >= nAll-nLast {
			energyLast += v
		}
	}
	energyAll /= float32(nAll)
	energyLast /= float32(nLast)

	return energyLast <= threshold*energyAll
}
