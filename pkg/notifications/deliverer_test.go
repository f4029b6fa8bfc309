package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMultiDeliverer_Deliver(t *testing.T) {
	t.Parallel()

	n := Notification{ID: 1, UserID: 42}

	d1 := new(MockDeliverer)
	d1.On("Deliver", mock.Anything, n).Return(errors.New("first failed"))
	d2 := new(MockDeliverer)
	d2.On("Deliver", mock.Anything, n).Return(nil)

	m := NewMultiDeliverer([]Deliverer{d1, nil, d2})
	assert.NoError(t, m.Deliver(context.Background(), n))

	d1.AssertExpectations(t)
	d2.AssertExpectations(t)
}

func TestMultiDeliverer_DeliverBatch(t *testing.T) {
	t.Parallel()

	ns := []Notification{{ID: 1, UserID: 42}, {ID: 2, UserID: 43}}

	d1 := new(MockDeliverer)
	d1.On("DeliverBatch", mock.Anything, ns).Return(nil)
	d2 := new(MockDeliverer)
	d2.On("DeliverBatch", mock.Anything, ns).Return(errors.New("relay down"))

	m := NewMultiDeliverer([]Deliverer{d1, d2})
	assert.NoError(t, m.DeliverBatch(context.Background(), ns))

	d1.AssertExpectations(t)
	d2.AssertExpectations(t)
}

func TestMultiDeliverer_WakesRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	defer r.Close()

	w := register(t, r, 42, 0, time.Minute)
	m := NewMultiDeliverer([]Deliverer{NoOpDeliverer{}, r})
	assert.NoError(t, m.Deliver(context.Background(), Notification{ID: 1, UserID: 42}))
	assert.Equal(t, OutcomeDelivered, receive(t, w).Outcome)
}
