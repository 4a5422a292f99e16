// Package normalizer извлекает список прогнозов из ответа upstream workflow.
// Форма ответа менялась со временем, поэтому пути проверяются по очереди.
package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"forecast-gateway/internal/models"
)

// Strategy описывает один путь до списка прогнозов
type Strategy struct {
	Name string
	Path []string
}

// Strategies пути в порядке приоритета. Порядок менять нельзя.
var Strategies = []Strategy{
	{Name: "result.predictions", Path: []string{"result", "predictions"}},
	{Name: "result.response_body.predictions", Path: []string{"result", "response_body", "predictions"}},
	{Name: "predictions", Path: []string{"predictions"}},
}

// Result результат нормализации
type Result struct {
	Records  []models.PredictionRecord
	Strategy string
}

// Extract возвращает первый непустой список прогнозов.
// Если ни один путь не подошел, возвращается пустой Result без ошибки.
// Ошибка возвращается, только если найденный список не удалось разобрать.
func Extract(body []byte) (Result, error) {
	for _, s := range Strategies {
		items, ok := lookup(body, s.Path)
		if !ok || len(items) == 0 {
			continue
		}

		records := make([]models.PredictionRecord, len(items))
		for i, item := range items {
			if err := json.Unmarshal(item, &records[i]); err != nil {
				return Result{}, fmt.Errorf("%s[%d]: %w", s.Name, i, err)
			}
		}
		return Result{Records: records, Strategy: s.Name}, nil
	}
	return Result{}, nil
}

// lookup спускается по ключам и возвращает массив в конце пути
func lookup(body []byte, path []string) ([]json.RawMessage, bool) {
	cur := json.RawMessage(body)
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, false
		}
		next, ok := obj[key]
		if !ok {
			return nil, false
		}
		cur = next
	}

	var items []json.RawMessage
	if err := json.Unmarshal(cur, &items); err != nil {
		return nil, false
	}
	return items, true
}

// Describe перечисляет проверяемые пути, для сообщений об ошибках
func Describe() string {
	names := make([]string, len(Strategies))
	for i, s := range Strategies {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
