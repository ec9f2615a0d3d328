// Пакет model — доменные модели инспекционного модуля.
package model

import "time"

// CharacteristicSpec — шаблон характеристики в карточке детали.
// Поле Specification записывается в грамматике спецификаций:
// "значение ± допуск" (или "значение допуск" через пробел), опционально
// с ведущим префиксом повторения "<N>x".
type CharacteristicSpec struct {
	Name          string `json:"name"`
	Specification string `json:"specification"`
	CheckMethod   string `json:"checkMethod"`
}

// Characteristic — развёрнутая строка инспекционного отчёта: одна
// измеряемая позиция с фиксированным числом ячеек наблюдений.
// Пустая ячейка означает "не измерено".
type Characteristic struct {
	Name          string   `json:"name"`
	Specification string   `json:"specification"`
	CheckMethod   string   `json:"checkMethod"`
	Observations  []string `json:"observations"`
}

// Part — деталь, подлежащая инспекции. Characteristics хранится как
// упорядоченный jsonb-массив: порядок строк в отчёте повторяет порядок
// шаблона.
type Part struct {
	// ID — внутренний идентификатор (uuid).
	ID string `json:"id"`
	// PartNo — номер детали, уникален в пределах системы.
	PartNo string `json:"partNo"`
	// PartName — название детали.
	PartName string `json:"partName"`
	// Customer — заказчик, по которому фильтруется сводная таблица.
	Customer string `json:"customer"`
	// Characteristics — шаблоны характеристик (минимум один).
	Characteristics []CharacteristicSpec `json:"characteristics"`
	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updatedAt"`
}
