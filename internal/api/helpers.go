package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// restaurantIDFromHeader извлекает идентификатор ресторана из заголовка X-Restaurant-Id
// При ошибке пишет ответ и возвращает ok=false
func restaurantIDFromHeader(ctx *gin.Context) (string, bool) {
	raw := ctx.GetHeader("X-Restaurant-Id")
	if raw == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error": "Заголовок X-Restaurant-Id обязателен",
		})
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверный формат X-Restaurant-Id",
			"details": err.Error(),
		})
		return "", false
	}
	return id.String(), true
}

// parseDateRange разбирает query-параметры date_from и date_to
// По умолчанию окно - последние 7 дней включая сегодня
func parseDateRange(ctx *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	dateTo := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dateFrom := dateTo.AddDate(0, 0, -6)

	if raw := ctx.Query("date_to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Неверный формат date_to, ожидается YYYY-MM-DD",
				"details": err.Error(),
			})
			return time.Time{}, time.Time{}, false
		}
		dateTo = parsed
		dateFrom = dateTo.AddDate(0, 0, -6)
	}
	if raw := ctx.Query("date_from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Неверный формат date_from, ожидается YYYY-MM-DD",
				"details": err.Error(),
			})
			return time.Time{}, time.Time{}, false
		}
		dateFrom = parsed
	}

	if dateTo.Before(dateFrom) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "date_to должен быть не раньше date_from",
		})
		return time.Time{}, time.Time{}, false
	}
	return dateFrom, dateTo, true
}

// parseIntQuery разбирает целочисленный query-параметр с значением по умолчанию
// Отрицательные значения отклоняются
func parseIntQuery(ctx *gin.Context, name string, defaultValue int) (int, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return defaultValue, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Параметр %s должен быть неотрицательным числом", name),
		})
		return 0, false
	}
	return value, true
}
