package probe

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/okian/launchdash/internal/domain/types"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	fullRangeEvery     = 10 // every Nth job per site spans the whole slider
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// GenerateJobs creates n payload ranges per site inside slider, snapped to
// the slider step the way the dashboard slider would produce them. Every
// range has Min <= Max.
func GenerateJobs(sites []string, slider types.SliderBounds, n int) []Job {
	jobs := make([]Job, 0, len(sites)*n)
	for _, site := range sites {
		for i := 0; i < n; i++ {
			if i%fullRangeEvery == 0 {
				jobs = append(jobs, Job{Site: site, Range: types.Range{Min: slider.Min, Max: slider.Max}})
				continue
			}
			a := snap(slider, slider.Min+getRandomFloat()*(slider.Max-slider.Min))
			b := snap(slider, slider.Min+getRandomFloat()*(slider.Max-slider.Min))
			if a > b {
				a, b = b, a
			}
			jobs = append(jobs, Job{Site: site, Range: types.Range{Min: a, Max: b}})
		}
	}
	return jobs
}

// snap rounds v to the nearest slider step, keeping it inside the slider.
func snap(slider types.SliderBounds, v float64) float64 {
	if slider.Step > 0 {
		v = slider.Min + math.Round((v-slider.Min)/slider.Step)*slider.Step
	}
	return math.Max(slider.Min, math.Min(slider.Max, v))
}
