package models

// StatusPatch moves an order to another status.
type StatusPatch struct {
	Status OrderStatus `json:"status"`
}

func (p StatusPatch) Fields() map[string]any {
	return map[string]any{"status": string(p.Status)}
}

// ProductPatch changes only the non-nil fields.
type ProductPatch struct {
	Name        *I18nText `json:"name"`
	Description *I18nText `json:"description"`
	Price       *int64    `json:"price"`
	Image       *string   `json:"image"`
	Category    *string   `json:"category"`
}

func (p ProductPatch) Fields() map[string]any {
	out := map[string]any{}
	if p.Name != nil {
		out["name"] = p.Name.Fields()
	}
	if p.Description != nil {
		out["description"] = p.Description.Fields()
	}
	if p.Price != nil {
		out["price"] = *p.Price
	}
	if p.Image != nil {
		out["image"] = *p.Image
	}
	if p.Category != nil {
		out["category"] = *p.Category
	}
	return out
}

func (p ProductPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// FeedbackAttachPatch copies a feedback onto its order document.
type FeedbackAttachPatch struct {
	Feedback Feedback
}

func (p FeedbackAttachPatch) Fields() map[string]any {
	f := p.Feedback
	return map[string]any{
		"feedback": map[string]any{
			"id":           f.ID,
			"orderId":      f.OrderID,
			"customerName": f.CustomerName,
			"rating":       f.Rating,
			"comment":      f.Comment,
			"createdAt":    f.CreatedAt,
		},
	}
}
