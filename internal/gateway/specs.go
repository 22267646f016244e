package gateway

import "github.com/Skotchmaster/pharma_ruche/internal/models"

var (
	ProductSpec = Spec[models.Product]{
		Name: Products,
		Less: func(a, b models.Product) bool { return a.Price < b.Price },
		Fix: func(p models.Product) models.Product {
			if p.Category == "" {
				p.Category = models.DefaultCategory
			}
			return p
		},
	}
	OrderSpec = Spec[models.Order]{
		Name: Orders,
		Less: func(a, b models.Order) bool { return a.CreatedAt.After(b.CreatedAt) },
	}
	FeedbackSpec = Spec[models.Feedback]{
		Name: Feedbacks,
		Less: func(a, b models.Feedback) bool { return a.CreatedAt.After(b.CreatedAt) },
	}
)

// Collections groups the three storefront collections over one backend.
type Collections struct {
	Products  *DocCollection[models.Product]
	Orders    *DocCollection[models.Order]
	Feedbacks *DocCollection[models.Feedback]
}

func NewCollections(b Backend) Collections {
	return Collections{
		Products:  NewCollection(b, ProductSpec),
		Orders:    NewCollection(b, OrderSpec),
		Feedbacks: NewCollection(b, FeedbackSpec),
	}
}
