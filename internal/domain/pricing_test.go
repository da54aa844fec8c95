package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRate(t *testing.T) {
	tests := []struct {
		name     string
		offering SubjectOffering
		mode     TeachingMode
		want     float64
		wantErr  error
	}{
		{
			name: "enabled mode rate",
			offering: SubjectOffering{
				ModeRates: []ModeRate{{Mode: ModeOnline, HourlyRate: 500, Enabled: true}},
			},
			mode: ModeOnline,
			want: 500,
		},
		{
			name: "disabled mode falls back to legacy online",
			offering: SubjectOffering{
				ModeRates:   []ModeRate{{Mode: ModeOnline, HourlyRate: 500, Enabled: false}},
				LegacyRates: &LegacyRates{Online: 750},
			},
			mode: ModeOnline,
			want: 750,
		},
		{
			name: "zero rate falls back to legacy individual for home visit",
			offering: SubjectOffering{
				ModeRates:   []ModeRate{{Mode: ModeHomeVisit, HourlyRate: 0, Enabled: true}},
				LegacyRates: &LegacyRates{Individual: 900},
			},
			mode: ModeHomeVisit,
			want: 900,
		},
		{
			name: "legacy group",
			offering: SubjectOffering{
				LegacyRates: &LegacyRates{Group: 300},
			},
			mode: ModeGroup,
			want: 300,
		},
		{
			name:     "neither configured",
			offering: SubjectOffering{},
			mode:     ModeOnline,
			wantErr:  ErrModeUnavailable,
		},
		{
			name: "legacy zero is unavailable",
			offering: SubjectOffering{
				ModeRates:   []ModeRate{{Mode: ModeGroup, HourlyRate: 200, Enabled: false}},
				LegacyRates: &LegacyRates{Online: 100},
			},
			mode:    ModeGroup,
			wantErr: ErrModeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRate(&tt.offering, tt.mode)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotal(t *testing.T) {
	assert.Equal(t, 1000.0, ComputeTotal(500, 2))
	assert.Equal(t, 0.0, ComputeTotal(0, 3))
	assert.Equal(t, 37.5, ComputeTotal(12.5, 3))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1000.00", FormatPrice(1000))
	assert.Equal(t, "0.30", FormatPrice(0.1*3))
}
