// cache.go — LRU-кэш сводных таблиц соответствия с TTL.
//
// Агрегация перечитывает все отчёты и детали, поэтому результат
// кэшируется по ключу фильтра заказчика. Любая мутация отчётов или
// деталей сбрасывает кэш целиком: таблица строится из общего набора
// данных, и точечная инвалидация не окупается.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики кэша. Регистрируются один раз в глобальном registry.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "im_compliance_cache_hits_total",
		Help: "Количество попаданий в кэш сводных таблиц",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "im_compliance_cache_misses_total",
		Help: "Количество промахов кэша сводных таблиц",
	})
)

// GridCache — кэш сводных таблиц соответствия.
type GridCache struct {
	lru *expirable.LRU[string, *ComplianceReport]
}

// NewGridCache создаёт кэш на maxSize записей с временем жизни ttl.
func NewGridCache(maxSize int, ttl time.Duration) *GridCache {
	return &GridCache{
		lru: expirable.NewLRU[string, *ComplianceReport](maxSize, nil, ttl),
	}
}

// Get возвращает сводную таблицу по ключу фильтра.
func (c *GridCache) Get(key string) (*ComplianceReport, bool) {
	report, ok := c.lru.Get(key)
	if ok {
		cacheHitsTotal.Inc()
	} else {
		cacheMissesTotal.Inc()
	}
	return report, ok
}

// Set сохраняет сводную таблицу по ключу фильтра.
func (c *GridCache) Set(key string, report *ComplianceReport) {
	c.lru.Add(key, report)
}

// Purge сбрасывает кэш. Вызывается при любой мутации отчётов или деталей.
func (c *GridCache) Purge() {
	c.lru.Purge()
}

// Len возвращает число записей в кэше.
func (c *GridCache) Len() int {
	return c.lru.Len()
}
