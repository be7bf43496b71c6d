package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTuning(t *testing.T) {
	tuning := DefaultTuning()

	assert.Equal(t, 0.03, tuning.FeeRate)
	assert.Equal(t, 100, tuning.ProviderPageLimit)
	assert.Equal(t, 30, tuning.TrendDays)
	assert.Equal(t, 5, tuning.TopConsumers)
	assert.Equal(t, 10, tuning.RecentTransactions)

	assert.NoError(t, validateTuning(tuning))
}

func TestValidateTuningRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Tuning)
	}{
		{"negative fee rate", func(c *Tuning) { c.FeeRate = -0.1 }},
		{"fee rate at one", func(c *Tuning) { c.FeeRate = 1 }},
		{"zero page limit", func(c *Tuning) { c.ProviderPageLimit = 0 }},
		{"zero trend days", func(c *Tuning) { c.TrendDays = 0 }},
		{"zero top consumers", func(c *Tuning) { c.TopConsumers = 0 }},
		{"zero recent transactions", func(c *Tuning) { c.RecentTransactions = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tuning := DefaultTuning()
			tc.mutate(&tuning)
			assert.Error(t, validateTuning(tuning))
		})
	}
}

func TestStaticTuningHolder(t *testing.T) {
	tuning := DefaultTuning()
	tuning.FeeRate = 0.029

	holder := NewStaticTuningHolder(tuning)
	assert.Equal(t, 0.029, holder.Get().FeeRate)
}
