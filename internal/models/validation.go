package models

import (
	"sort"
	"strings"
)

// ValidationErrors накапливает ошибки валидации по полям.
// Сериализуется в JSON вида {"field": ["message", ...]} — форма,
// которую клиент получает со статусом 422.
type ValidationErrors map[string][]string

// Add добавляет сообщение об ошибке для поля.
func (e ValidationErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Empty сообщает, что ни одной ошибки не накоплено.
func (e ValidationErrors) Empty() bool {
	return len(e) == 0
}

// Error реализует интерфейс error: перечисляет все сообщения в
// детерминированном порядке полей.
func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(e))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], "; "))
	}
	return strings.Join(parts, "; ")
}
