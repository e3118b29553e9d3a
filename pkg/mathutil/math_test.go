package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSatsToBTC(t *testing.T) {
	tests := []struct {
		sats     uint64
		expected string
	}{
		{0, "0.00000000"},
		{1, "0.00000001"},
		{100000, "0.00100000"},
		{2100000000000000, "21000000.00000000"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, SatsToBTC(tt.sats))
	}
}

func TestBTCToSats(t *testing.T) {
	tests := []struct {
		amount   string
		expected uint64
		err      error
	}{
		{"0.001", 100000, nil},
		{"1", 100000000, nil},
		{"0.00000001", 1, nil},
		{"0.000000001", 0, ErrInvalidAmount},
		{"-1", 0, ErrInvalidAmount},
		{"0", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
		{"1000000000000", 0, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			sats, err := BTCToSats(tt.amount)
			require.Equal(t, tt.err, err)
			require.Equal(t, tt.expected, sats)
		})
	}
}

func TestSafeMath(t *testing.T) {
	z, ok := SafeAdd(1, 2)
	require.True(t, ok)
	require.Equal(t, uint64(3), z)

	_, ok = SafeAdd(math.MaxUint64, 1)
	require.False(t, ok)

	z, ok = SafeSub(3, 2)
	require.True(t, ok)
	require.Equal(t, uint64(1), z)

	_, ok = SafeSub(2, 3)
	require.False(t, ok)
}

func TestFees(t *testing.T) {
	withFee, fee := PlusFee(100000, 25)
	require.Equal(t, uint64(250), fee)
	require.Equal(t, uint64(100250), withFee)

	withoutFee, fee := LessFee(100000, 25)
	require.Equal(t, uint64(250), fee)
	require.Equal(t, uint64(99750), withoutFee)

	// fees are rounded up to the next satoshi
	_, fee = PlusFee(1, 1)
	require.Equal(t, uint64(1), fee)
}
