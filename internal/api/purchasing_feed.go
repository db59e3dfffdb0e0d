package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"restaubot/server/internal/services"
	"restaubot/server/internal/utils"

	"github.com/segmentio/kafka-go"
)

// PurchasingFeedConsumer читает события закупок из Kafka и транслирует их на дашборд
type PurchasingFeedConsumer struct {
	brokers   []string
	topic     string
	groupID   string
	reader    *kafka.Reader
	ctx       context.Context
	cancel    context.CancelFunc
	redisUtil *utils.RedisClient
	processed int64 // Счетчик обработанных событий
	lastLog   int64 // Время последнего лога
}

// NewPurchasingFeedConsumer создает новый Kafka Consumer для дашборда закупок
func NewPurchasingFeedConsumer(brokers string, topic string, redisUtil *utils.RedisClient, username, password, caCert string) *PurchasingFeedConsumer {
	brokerList := ParseKafkaBrokers(brokers)
	ctx, cancel := context.WithCancel(context.Background())

	dialer := CreateKafkaDialer(username, password, caCert)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokerList,
		Topic:       topic,
		GroupID:     "purchasing-dashboard-group",
		StartOffset: kafka.LastOffset, // Дашборду нужны только свежие события
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     1 * time.Second,
		Dialer:      dialer,
	})

	return &PurchasingFeedConsumer{
		brokers:   brokerList,
		topic:     topic,
		groupID:   "purchasing-dashboard-group",
		reader:    reader,
		ctx:       ctx,
		cancel:    cancel,
		redisUtil: redisUtil,
		lastLog:   time.Now().Unix(),
	}
}

// Start запускает чтение из Kafka и отправку на дашборд
func (pc *PurchasingFeedConsumer) Start() {
	log.Printf("📡 Purchasing Feed Consumer запущен: topic=%s, groupID=%s", pc.topic, pc.groupID)

	go func() {
		for {
			select {
			case <-pc.ctx.Done():
				log.Println("🛑 Purchasing Feed Consumer остановлен")
				return
			default:
				msg, err := pc.reader.ReadMessage(pc.ctx)
				if err != nil {
					if err == context.Canceled {
						return
					}
					log.Printf("⚠️ Purchasing Feed Consumer ошибка чтения: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}

				var event services.PurchasingEvent
				if err := json.Unmarshal(msg.Value, &event); err != nil {
					// Не логируем каждую ошибку парсинга, чтобы не спамить
					continue
				}

				// Счетчики событий для статистики дашборда
				if pc.redisUtil != nil {
					pc.redisUtil.Increment("purchasing:events:total")
					pc.redisUtil.Increment(fmt.Sprintf("purchasing:events:%s", event.Type))
				}

				DashboardHub.BroadcastMessage(msg.Value)

				// Логируем только раз в 5 секунд для прогресса
				processed := atomic.AddInt64(&pc.processed, 1)
				now := time.Now().Unix()
				if now-atomic.LoadInt64(&pc.lastLog) >= 5 {
					atomic.StoreInt64(&pc.lastLog, now)
					log.Printf("📊 Purchasing Feed Consumer: обработано %d событий", processed)
				}
			}
		}
	}()
}

// Stop останавливает Kafka Consumer
func (pc *PurchasingFeedConsumer) Stop() {
	pc.cancel()
	if pc.reader != nil {
		pc.reader.Close()
	}
	log.Println("🛑 Purchasing Feed Consumer остановлен")
}
