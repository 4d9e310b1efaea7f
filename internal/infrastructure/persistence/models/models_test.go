package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/content"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostModel_RoundTrip(t *testing.T) {
	post, err := content.NewPost("Hello World", "", "some body")
	require.NoError(t, err)
	post.Tags = []string{"go", "testing"}

	m := PostModelFromDomain(post)
	assert.Equal(t, `["go","testing"]`, m.TagsJSON)

	back := m.ToDomain()
	assert.Equal(t, post.ID, back.ID)
	assert.Equal(t, "hello-world", back.Slug)
	assert.Equal(t, post.Tags, back.Tags)
}

func TestPostModel_EmptyTags(t *testing.T) {
	m := &PostModel{}
	assert.Equal(t, []string{}, m.ToDomain().Tags)

	m.TagsJSON = "not json"
	assert.Equal(t, []string{}, m.ToDomain().Tags)
}

func TestOrderModel_RoundTrip(t *testing.T) {
	price, err := valueobject.NewMoneyFromString("19.99", valueobject.EUR)
	require.NoError(t, err)
	items := []marketplace.OrderItem{
		{ProductID: uuid.New(), ProductName: "Sticker", UnitPrice: price, Quantity: 2},
		{ProductID: uuid.New(), ProductName: "Poster", UnitPrice: price, Quantity: 1},
	}
	order, err := marketplace.NewOrder("Ada", "ada@example.com", items)
	require.NoError(t, err)

	m := OrderModelFromDomain(order)
	require.Len(t, m.Items, 2)
	assert.Equal(t, "39.98", m.Items[0].LineTotal.StringFixed(2))
	assert.Equal(t, 1, m.Items[1].Position)
	assert.NotEqual(t, m.Items[0].ID, m.Items[1].ID)
	assert.Equal(t, m.Items[0].ID, OrderModelFromDomain(order).Items[0].ID, "item ids are stable")

	back := m.ToDomain()
	assert.Equal(t, valueobject.EUR, back.Total.Currency())
	assert.True(t, order.Total.Equals(back.Total))
	assert.Equal(t, "Poster", back.Items[1].ProductName)
}
