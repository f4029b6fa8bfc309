package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Exists(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func TestMemoryDirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	d := NewMemoryDirectory(1, 2)

	ok, err := d.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = d.Exists(ctx, 3)
	assert.False(t, ok)

	d.Add(3)
	ok, _ = d.Exists(ctx, 3)
	assert.True(t, ok)

	d.Remove(1)
	ok, _ = d.Exists(ctx, 1)
	assert.False(t, ok)
}

func TestCachedDirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("caches positive answers", func(t *testing.T) {
		next := new(MockDirectory)
		next.On("Exists", mock.Anything, int64(42)).Return(true, nil).Once()

		d := NewCachedDirectory(next, 10, time.Minute)
		for i := 0; i < 3; i++ {
			ok, err := d.Exists(ctx, 42)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		next.AssertExpectations(t)
	})

	t.Run("does not cache negative answers or errors", func(t *testing.T) {
		next := new(MockDirectory)
		next.On("Exists", mock.Anything, int64(99)).Return(false, nil).Twice()
		next.On("Exists", mock.Anything, int64(7)).Return(false, errors.New("timeout")).Twice()

		d := NewCachedDirectory(next, 10, time.Minute)
		for i := 0; i < 2; i++ {
			ok, err := d.Exists(ctx, 99)
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = d.Exists(ctx, 7)
			assert.Error(t, err)
		}
		next.AssertExpectations(t)
	})

	t.Run("forget drops the entry", func(t *testing.T) {
		next := new(MockDirectory)
		next.On("Exists", mock.Anything, int64(42)).Return(true, nil).Twice()

		d := NewCachedDirectory(next, 10, time.Minute)
		_, _ = d.Exists(ctx, 42)
		d.Forget(42)
		_, _ = d.Exists(ctx, 42)
		next.AssertExpectations(t)
	})
}
