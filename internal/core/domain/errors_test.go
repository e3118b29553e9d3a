package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestMapTimeout(t *testing.T) {
	require.NoError(t, domain.MapTimeout(nil))

	err := domain.MapTimeout(fmt.Errorf("get info: %w", context.DeadlineExceeded))
	require.ErrorIs(t, err, domain.ErrTimeout)
	require.True(t, domain.IsRetryable(err))

	require.Equal(t, domain.ErrTimeout, domain.MapTimeout(domain.ErrTimeout))

	other := errors.New("boom")
	require.Equal(t, other, domain.MapTimeout(other))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{domain.ErrTimeout, true},
		{fmt.Errorf("%w: dial tcp", domain.ErrNetworkUnavailable), true},
		{domain.ErrUnauthorized, false},
		{domain.ErrPaymentRejected, false},
		{context.Canceled, false},
		{nil, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.retryable, domain.IsRetryable(tt.err), "%v", tt.err)
	}
}
