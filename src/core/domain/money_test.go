package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/src/core/domain"
)

func TestNewMoney_RejectsNegative(t *testing.T) {
	_, err := domain.NewMoney(decimal.NewFromInt(-1))
	assert.True(t, domain.IsValidationError(err))

	m, err := domain.NewMoney(decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "0", m.String())
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := domain.NewMoneyFromString("49.90")
	require.NoError(t, err)
	assert.Equal(t, "49.9", m.String())

	_, err = domain.NewMoneyFromString("not-a-number")
	assert.True(t, domain.IsValidationError(err))

	_, err = domain.NewMoneyFromString("-10")
	assert.True(t, domain.IsValidationError(err))
}

func TestMulDays_NoDrift(t *testing.T) {
	rate, err := domain.NewMoneyFromString("0.10")
	require.NoError(t, err)

	// 0.10 * 3 must be exactly 0.3, which float math does not guarantee.
	assert.Equal(t, "0.3", rate.MulDays(3).String())

	rate50, err := domain.NewMoneyFromString("50")
	require.NoError(t, err)
	assert.Equal(t, "700", rate50.MulDays(14).String())
}
