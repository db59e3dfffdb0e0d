package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Типы событий закупок
const (
	EventSaleRecorded         = "sale.recorded"
	EventPurchaseOrderCreated = "purchase_order.created"
)

// PurchasingEvent представляет событие закупочного контура,
// публикуемое в Kafka для дашбордов
type PurchasingEvent struct {
	Type         string      `json:"type"`
	RestaurantID string      `json:"restaurant_id"`
	OccurredAt   time.Time   `json:"occurred_at"`
	Payload      interface{} `json:"payload"`
}

// PurchasingEventProducer публикует события закупок в Kafka
// Nil-получатель безопасен: без брокеров события просто не публикуются
type PurchasingEventProducer struct {
	writer *kafka.Writer
}

// NewPurchasingEventProducer создает producer для топика событий закупок
func NewPurchasingEventProducer(brokers []string, topic string) *PurchasingEventProducer {
	if len(brokers) == 0 {
		return nil
	}
	return &PurchasingEventProducer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish отправляет событие асинхронно, не блокируя HTTP запрос
// Ошибка публикации логируется и не влияет на результат операции
func (p *PurchasingEventProducer) Publish(eventType, restaurantID string, payload interface{}) {
	if p == nil {
		return
	}

	event := PurchasingEvent{
		Type:         eventType,
		RestaurantID: restaurantID,
		OccurredAt:   time.Now().UTC(),
		Payload:      payload,
	}

	go func() {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("⚠️ Не удалось сериализовать событие %s: %v", eventType, err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(restaurantID),
			Value: data,
		}); err != nil {
			log.Printf("⚠️ Не удалось опубликовать событие %s в Kafka: %v", eventType, err)
		}
	}()
}

// Close закрывает producer
func (p *PurchasingEventProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
