package execution

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlippageModel(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		want    interface{}
		wantErr error
	}{
		{"fixed", SlippageFixed, &FixedSlippage{}, nil},
		{"volume", SlippageVolume, &VolumeSlippage{}, nil},
		{"sqrt", SlippageSqrt, &SquareRootSlippage{}, nil},
		{"adaptive", SlippageAdaptive, &AdaptiveSlippage{}, nil},
		{"unknown name is a config error", "PARABOLIC", nil, ErrUnknownSlippageModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSlippageModel(tt.model, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestSlippage_NeverNegative(t *testing.T) {
	qty := decimal.NewFromInt(100)
	volume := decimal.NewFromInt(10000)

	adaptive := &AdaptiveSlippage{
		Base:                  decimal.NewFromFloat(0.0002),
		VolumeSensitivity:     decimal.NewFromFloat(0.5),
		VolatilitySensitivity: decimal.NewFromFloat(0.3),
	}
	adaptive.UpdateVolatility(decimal.NewFromFloat(0.02))

	models := []SlippageModel{
		&FixedSlippage{Bps: decimal.NewFromInt(10)},
		&VolumeSlippage{Base: decimal.NewFromFloat(0.0001), ImpactCoefficient: decimal.NewFromFloat(0.1)},
		&SquareRootSlippage{
			Volatility:           decimal.NewFromFloat(0.02),
			DefaultParticipation: decimal.NewFromFloat(0.1),
			PermanentImpact:      decimal.NewFromFloat(0.1),
			TemporaryImpact:      decimal.NewFromFloat(0.01),
		},
		adaptive,
	}

	for _, price := range []int64{1, 150, 99999} {
		p := decimal.NewFromInt(price)
		for _, m := range models {
			slip := m.Slip(p, qty, volume)
			assert.False(t, slip.IsNegative(), "%T produced negative slip %s at price %s", m, slip, p)
		}
	}
}

func TestFixedSlippage_Fraction(t *testing.T) {
	m := &FixedSlippage{Bps: decimal.NewFromInt(10)}
	slip := m.Slip(decimal.NewFromInt(150), decimal.NewFromInt(100), decimal.Zero)
	assert.True(t, slip.Equal(decimal.NewFromFloat(0.001)), "10 bps = 0.001, got %s", slip)
}

func TestVolumeSlippage(t *testing.T) {
	m := &VolumeSlippage{
		Base:              decimal.NewFromFloat(0.0001),
		ImpactCoefficient: decimal.NewFromFloat(0.1),
	}

	// base + 0.1 * 100/10000 = 0.0001 + 0.001
	slip := m.Slip(decimal.NewFromInt(50), decimal.NewFromInt(100), decimal.NewFromInt(10000))
	assert.True(t, slip.Equal(decimal.NewFromFloat(0.0011)), "got %s", slip)

	// No volume falls back to base.
	slip = m.Slip(decimal.NewFromInt(50), decimal.NewFromInt(100), decimal.Zero)
	assert.True(t, slip.Equal(decimal.NewFromFloat(0.0001)))
}

func TestSquareRootSlippage_GrowsWithParticipation(t *testing.T) {
	m := &SquareRootSlippage{
		Volatility:           decimal.NewFromFloat(0.02),
		DefaultParticipation: decimal.NewFromFloat(0.1),
		PermanentImpact:      decimal.NewFromFloat(0.1),
		TemporaryImpact:      decimal.NewFromFloat(0.01),
	}
	price := decimal.NewFromInt(100)
	volume := decimal.NewFromInt(10000)

	small := m.Slip(price, decimal.NewFromInt(100), volume)
	large := m.Slip(price, decimal.NewFromInt(2500), volume)
	assert.True(t, large.GreaterThan(small), "small=%s large=%s", small, large)
}

func TestAdaptiveSlippage_VolatilityTerm(t *testing.T) {
	m := &AdaptiveSlippage{
		Base:                  decimal.NewFromFloat(0.0002),
		VolumeSensitivity:     decimal.NewFromFloat(0.5),
		VolatilitySensitivity: decimal.NewFromFloat(0.3),
	}
	price := decimal.NewFromInt(100)
	qty := decimal.NewFromInt(100)
	volume := decimal.NewFromInt(10000)

	calm := m.Slip(price, qty, volume)
	m.UpdateVolatility(decimal.NewFromFloat(0.05))
	volatile := m.Slip(price, qty, volume)
	assert.True(t, volatile.GreaterThan(calm), "calm=%s volatile=%s", calm, volatile)
}
