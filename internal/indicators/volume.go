package indicators

import (
	"fmt"

	"paper-trader/internal/models"
)

// VolumeRatio calculates the ratio of each bar's volume to its moving average.
// A ratio above 1 means the bar traded more than its recent average.
type VolumeRatio struct {
	period int
}

// NewVolumeRatio creates a new VolumeRatio indicator.
func NewVolumeRatio(period int) *VolumeRatio {
	return &VolumeRatio{period: period}
}

func (v *VolumeRatio) Name() string {
	return fmt.Sprintf("VolumeRatio_%d", v.period)
}

func (v *VolumeRatio) Period() int {
	return v.period
}

func (v *VolumeRatio) Calculate(candles []models.Candle) ([]float64, error) {
	if v.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < v.period {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	vols := volumes(candles)
	avg := CalculateSMA(vols, v.period)

	result := make([]float64, n)
	for i := v.period - 1; i < n; i++ {
		if avg[i] > 0 {
			result[i] = vols[i] / avg[i]
		}
	}

	return result, nil
}
