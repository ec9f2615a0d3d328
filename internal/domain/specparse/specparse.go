// Пакет specparse — грамматика спецификаций характеристик и оценка
// наблюдений.
//
// Спецификация записывается в одной из двух форм:
//
//	"12.5 ± 0.2"  — номинал и допуск через знак ±
//	"12.5 0.2"    — запасная форма через пробел (допуск опционален)
//
// Шаблон характеристики может нести ведущий префикс повторения
// "<N>x спецификация": при развёртке он порождает N строк отчёта.
//
// Пакет — единственный владелец грамматики: развёртка характеристик,
// индикация прохождения при проверке и проекция лог-листа используют
// одни и те же функции.
package specparse

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
)

// ObservationSlots — число ячеек наблюдений в строке отчёта.
const ObservationSlots = 6

// ErrMalformed — спецификация не разбирается ни одной из двух форм.
var ErrMalformed = errors.New("некорректная спецификация")

var (
	toleranceRe = regexp.MustCompile(`([0-9.]+)\s*±\s*([0-9.]+)`)
	repeatRe    = regexp.MustCompile(`^(\d+)\s*[xX]\s*(.*)$`)
)

// Tolerance — разобранная спецификация: номинал и симметричный допуск.
type Tolerance struct {
	Value float64
	Tol   float64
}

// ParseTolerance разбирает спецификацию. Сначала ищется форма со знаком ±,
// затем запасная форма через пробел; отсутствующий допуск в запасной
// форме равен нулю.
func ParseTolerance(spec string) (Tolerance, error) {
	if m := toleranceRe.FindStringSubmatch(spec); m != nil {
		value, err1 := strconv.ParseFloat(m[1], 64)
		tol, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return Tolerance{}, fmt.Errorf("%w: %q", ErrMalformed, spec)
		}
		return Tolerance{Value: value, Tol: tol}, nil
	}

	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return Tolerance{}, fmt.Errorf("%w: пустая строка", ErrMalformed)
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Tolerance{}, fmt.Errorf("%w: %q", ErrMalformed, spec)
	}
	tol := 0.0
	if len(fields) > 1 {
		tol, err = strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Tolerance{}, fmt.Errorf("%w: %q", ErrMalformed, spec)
		}
	}
	return Tolerance{Value: value, Tol: tol}, nil
}

// Evaluate сообщает, укладывается ли наблюдение в допуск спецификации.
// Пустое наблюдение считается допустимым ("не измерено" не есть брак).
// Неразбираемая спецификация или нечисловое наблюдение — отказ:
// при сомнении строка не проходит.
func Evaluate(observation, spec string) bool {
	if strings.TrimSpace(observation) == "" {
		return true
	}
	t, err := ParseTolerance(spec)
	if err != nil {
		return false
	}
	obs, err := strconv.ParseFloat(strings.TrimSpace(observation), 64)
	if err != nil {
		return false
	}
	return math.Abs(obs-t.Value) <= t.Tol
}

// RowPasses сообщает, проходят ли все наблюдения строки отчёта.
func RowPasses(c model.Characteristic) bool {
	for _, obs := range c.Observations {
		if !Evaluate(obs, c.Specification) {
			return false
		}
	}
	return true
}

// ParseRepeat распознаёт ведущий префикс повторения "<N>x". Возвращает
// число повторений, остаток спецификации и признак совпадения.
func ParseRepeat(spec string) (int, string, bool) {
	m := repeatRe.FindStringSubmatch(strings.TrimSpace(spec))
	if m == nil {
		return 0, "", false
	}
	count, err := strconv.Atoi(m[1])
	if err != nil {
		// Переполнение счётчика — префикс не распознан.
		return 0, "", false
	}
	return count, strings.TrimSpace(m[2]), true
}

// ExpandCharacteristics разворачивает шаблоны характеристик детали в
// строки отчёта. Шаблон с префиксом "<N>x" порождает N строк с именами
// "имя (1)" … "имя (N)" и спецификацией без префикса; остальные шаблоны
// переходят одной строкой без изменений. Каждая строка получает
// ObservationSlots пустых ячеек наблюдений.
func ExpandCharacteristics(specs []model.CharacteristicSpec) []model.Characteristic {
	rows := make([]model.Characteristic, 0, len(specs))
	for _, s := range specs {
		count, rest, ok := ParseRepeat(s.Specification)
		if !ok {
			rows = append(rows, model.Characteristic{
				Name:          s.Name,
				Specification: s.Specification,
				CheckMethod:   s.CheckMethod,
				Observations:  make([]string, ObservationSlots),
			})
			continue
		}
		for i := 1; i <= count; i++ {
			rows = append(rows, model.Characteristic{
				Name:          fmt.Sprintf("%s (%d)", s.Name, i),
				Specification: rest,
				CheckMethod:   s.CheckMethod,
				Observations:  make([]string, ObservationSlots),
			})
		}
	}
	return rows
}
