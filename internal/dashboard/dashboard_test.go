package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/pharma_ruche/internal/models"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	orders := []models.Order{
		{Total: 5200, Status: models.OrderStatusPending},
		{Total: 4500, Status: models.OrderStatusDelivered},
		{Total: 9999, Status: models.OrderStatusCancelled},
		{Total: 1200, Status: models.OrderStatusPending},
	}
	feedbacks := []models.Feedback{{Rating: 5}, {Rating: 4}, {Rating: 4}}

	s := Compute(orders, feedbacks, 3)
	assert.Equal(t, int64(10900), s.Revenue)
	assert.Equal(t, 4, s.Orders)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 1, s.Delivered)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, 4.3, s.AverageRating)
	assert.Equal(t, 3, s.Feedbacks)
	assert.Equal(t, 3, s.Products)
}

func TestComputeEmpty(t *testing.T) {
	t.Parallel()

	s := Compute(nil, nil, 0)
	assert.Equal(t, Stats{}, s)
}
