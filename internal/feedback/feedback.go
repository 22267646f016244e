// Package feedback records customer ratings for placed orders.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

const (
	MinRating = 1
	MaxRating = 5
)

var ErrPersist = errors.New("feedback not saved")

type Recorder struct {
	Feedbacks gateway.Collection[models.Feedback]
	// Orders, when set, also gets the feedback copied onto the order.
	Orders gateway.Collection[models.Order]
	Now    func() time.Time
}

func NewRecorder(feedbacks gateway.Collection[models.Feedback], orders gateway.Collection[models.Order]) *Recorder {
	return &Recorder{
		Feedbacks: feedbacks,
		Orders:    orders,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Submit stores a rating for order. A blank comment is replaced by the
// localized thank-you text. The rating is stored as given.
func (r *Recorder) Submit(ctx context.Context, order models.Order, rating int, comment string, lang i18n.Language) (*models.Feedback, error) {
	l := logging.FromContext(ctx).With("component", "feedback", "order_id", order.ID)

	comment = strings.TrimSpace(comment)
	if comment == "" {
		comment = i18n.T(lang, "thank_feedback")
	}

	fb := models.Feedback{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Rating:       rating,
		Comment:      comment,
		CreatedAt:    r.Now(),
	}

	id, err := r.Feedbacks.Create(ctx, fb)
	if err != nil {
		l.Error("feedback_create_failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	fb.ID = id

	if r.Orders != nil && order.ID != "" {
		if err := r.Orders.Update(ctx, order.ID, models.FeedbackAttachPatch{Feedback: fb}); err != nil {
			l.Warn("feedback_attach_failed", "feedback_id", id, "error", err)
		}
	}

	l.Info("feedback_recorded", "feedback_id", id, "rating", rating)
	return &fb, nil
}

func (r *Recorder) Subscribe(ctx context.Context) (*gateway.Feed[models.Feedback], error) {
	return r.Feedbacks.Subscribe(ctx)
}
