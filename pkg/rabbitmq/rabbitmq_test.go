package rabbitmq

import (
	"testing"
	"time"

	"shirtcatalog/internal/models"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCatalogEvent(t *testing.T) {
	occurred := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := models.CatalogEvent{
		Type:       models.EventShirtCreated,
		Shirt:      models.Shirt{ID: "abc", Brand: "Acme", Size: "M", Price: 19.5},
		OccurredAt: occurred,
	}

	msg, err := EncodeCatalogEvent(event)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, models.EventShirtCreated, msg.Type)
	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
	assert.Equal(t, occurred, msg.Timestamp)
	assert.Contains(t, string(msg.Body), `"photoRef":""`)

	decoded, err := DecodeCatalogEvent(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, event.Type, decoded.Type)
	assert.Equal(t, "Acme", decoded.Shirt.Brand)
	assert.True(t, occurred.Equal(decoded.OccurredAt))
}

func TestDecodeCatalogEvent_Rejects(t *testing.T) {
	_, err := DecodeCatalogEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeCatalogEvent([]byte(`{"shirt":{"id":"1"}}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no type")
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{}
	err := c.PublishCatalogEvent(models.CatalogEvent{Type: models.EventShirtDeleted})
	assert.Error(t, err)

	err = c.ConsumeCatalogEvents(func(models.CatalogEvent) error { return nil })
	assert.Error(t, err)
}
