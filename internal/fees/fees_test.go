package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/huissierpro/internal/models"
)

func TestBaseFeeFor(t *testing.T) {
	tests := []struct {
		category models.Category
		want     int64
	}{
		{models.CategoryAssignation, 75000},
		{models.CategorySaisieVente, 150000},
		{models.CategorySignificationJugement, 20000},
		{models.CategorySommationPayer, DefaultBaseFee},
		{models.Category("Acte inconnu"), DefaultBaseFee},
		{models.Category(""), DefaultBaseFee},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, BaseFeeFor(tt.category))
		})
	}
}

func TestRecompute_SommationScenario(t *testing.T) {
	in := models.Fees{
		Emoluments:   float64(BaseFeeFor(models.CategorySommationPayer)),
		Transport:    5000,
		Registration: 2000,
	}

	out, err := Recompute(in)
	require.NoError(t, err)

	assert.Equal(t, 25000.0, out.Emoluments)
	assert.Equal(t, 5400.0, out.Tax)
	assert.Equal(t, 37400.0, out.Total)
}

func TestRecompute_Formula(t *testing.T) {
	inputs := []models.Fees{
		{},
		{Emoluments: 1, Transport: 0.01, Registration: 0},
		{Emoluments: 120000, Transport: 3333, Registration: 1500},
		{Emoluments: 0.5, Transport: 0.33, Registration: 7.25},
		{Emoluments: 99999.99, Transport: 12345.67, Registration: 100},
	}
	for _, in := range inputs {
		out, err := Recompute(in)
		require.NoError(t, err)

		assert.Equal(t, round2(0.18*(in.Emoluments+in.Transport)), out.Tax)
		assert.Equal(t, in.Emoluments+in.Transport+in.Registration+out.Tax, out.Total)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	in := models.Fees{Emoluments: 35000, Transport: 1234.56, Registration: 789, Tax: 1, Total: 2}

	once, err := Recompute(in)
	require.NoError(t, err)
	twice, err := Recompute(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestRecompute_RejectsNegative(t *testing.T) {
	for _, in := range []models.Fees{
		{Emoluments: -1},
		{Transport: -0.01},
		{Registration: -500},
	} {
		_, err := Recompute(in)
		assert.ErrorIs(t, err, ErrInvalidFeeValue)
	}
}

func TestSetField(t *testing.T) {
	f := Initial(models.CategoryConstat)
	assert.Equal(t, 35000.0, f.Emoluments)
	assert.Equal(t, 6300.0, f.Tax)

	f, err := SetField(f, FieldTransport, 5000)
	require.NoError(t, err)
	assert.Equal(t, 7200.0, f.Tax)
	assert.Equal(t, 47200.0, f.Total)

	f, err = SetField(f, FieldRegistration, 800)
	require.NoError(t, err)
	assert.Equal(t, 7200.0, f.Tax)
	assert.Equal(t, 48000.0, f.Total)

	_, err = SetField(f, FieldTransport, -10)
	assert.ErrorIs(t, err, ErrInvalidFeeValue)

	_, err = SetField(f, "tax", 10)
	assert.ErrorIs(t, err, ErrInvalidFeeValue)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(Initial(models.CategoryConstat)))
	assert.NoError(t, Check(models.Fees{Emoluments: 25000, Transport: 5000, Registration: 2000, Tax: 5400, Total: 37400}))

	for name, f := range map[string]models.Fees{
		"negative input": {Emoluments: -25000, Tax: 1, Total: 999999},
		"stale tax":      {Emoluments: 25000, Tax: 1, Total: 25001},
		"stale total":    {Emoluments: 25000, Tax: 4500, Total: 999999},
		"missing tax":    {Emoluments: 35000},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, Check(f), ErrInvalidFeeValue)
		})
	}
}
