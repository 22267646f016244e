// Package dashboard computes the admin overview figures.
package dashboard

import (
	"math"

	"github.com/Skotchmaster/pharma_ruche/internal/models"
)

type Stats struct {
	Revenue       int64   `json:"revenue"`
	Orders        int     `json:"orders"`
	Pending       int     `json:"pending"`
	Delivered     int     `json:"delivered"`
	Cancelled     int     `json:"cancelled"`
	AverageRating float64 `json:"averageRating"`
	Feedbacks     int     `json:"feedbacks"`
	Products      int     `json:"products"`
}

// Compute sums revenue over orders that are not cancelled. The average
// rating is rounded to one decimal and is 0 without feedback.
func Compute(orders []models.Order, feedbacks []models.Feedback, products int) Stats {
	s := Stats{Orders: len(orders), Feedbacks: len(feedbacks), Products: products}
	for _, o := range orders {
		switch o.Status {
		case models.OrderStatusPending:
			s.Pending++
		case models.OrderStatusDelivered:
			s.Delivered++
		case models.OrderStatusCancelled:
			s.Cancelled++
			continue
		}
		s.Revenue += o.Total
	}

	if len(feedbacks) > 0 {
		sum := 0
		for _, f := range feedbacks {
			sum += f.Rating
		}
		s.AverageRating = math.Round(float64(sum)/float64(len(feedbacks))*10) / 10
	}
	return s
}
