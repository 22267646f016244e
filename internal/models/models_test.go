package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductLegacyDocument(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		raw      string
		wantName I18nText
		price    int64
		category string
	}{
		{
			name:     "plain string name and missing category",
			raw:      `{"id":"p1","name":"Miel","price":1500}`,
			wantName: I18nText{AR: "Miel", FR: "Miel", EN: "Miel"},
			price:    1500,
			category: "",
		},
		{
			name:     "string price",
			raw:      `{"id":"p2","name":{"ar":"ع","fr":"f","en":"e"},"price":"abc","category":"Gift Boxes"}`,
			wantName: I18nText{AR: "ع", FR: "f", EN: "e"},
			price:    0,
			category: "Gift Boxes",
		},
		{
			name:     "float price",
			raw:      `{"id":"p3","name":{"en":"x"},"price":2800.0}`,
			wantName: I18nText{EN: "x"},
			price:    2800,
			category: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var p Product
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &p))
			assert.Equal(t, tc.wantName, p.Name)
			assert.Equal(t, tc.price, p.Price)
			assert.Equal(t, tc.category, p.Category)
		})
	}
}

func TestCartItemKeepsQuantity(t *testing.T) {
	t.Parallel()

	in := []CartItem{{Product: Product{ID: "a", Price: 2800, Category: "Honey"}, Quantity: 3}}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"quantity":3`)
	assert.Contains(t, string(b), `"price":2800`)

	var out []CartItem
	require.NoError(t, json.Unmarshal(b, &out))
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Quantity)
	assert.Equal(t, int64(8400), out[0].LineTotal())
}

func TestCartItemWithoutCategoryRoundTrips(t *testing.T) {
	t.Parallel()

	in := []CartItem{{Product: Product{ID: "a", Name: I18nText{EN: "Miel"}, Price: 1500}, Quantity: 2}}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out []CartItem
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestI18nTextIn(t *testing.T) {
	t.Parallel()

	txt := I18nText{AR: "", FR: "Miel", EN: "Honey"}
	assert.Equal(t, "Honey", txt.In("ar"))
	assert.Equal(t, "Miel", txt.In("fr"))
	assert.True(t, I18nText{AR: " "}.IsZero())
}

func TestOrderStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, OrderStatusPending.IsValid())
	assert.False(t, OrderStatus("shipped").IsValid())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
}

func TestPatchFields(t *testing.T) {
	t.Parallel()

	price := int64(-3)
	p := ProductPatch{Price: &price}
	assert.Equal(t, map[string]any{"price": int64(-3)}, p.Fields())
	assert.True(t, ProductPatch{}.IsEmpty())

	assert.Equal(t, map[string]any{"status": "delivered"}, StatusPatch{Status: OrderStatusDelivered}.Fields())
	fb := FeedbackAttachPatch{Feedback: Feedback{ID: "f1", Rating: 5}}.Fields()
	assert.Equal(t, 5, fb["feedback"].(map[string]any)["rating"])
}
