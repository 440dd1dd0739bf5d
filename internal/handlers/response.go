package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/yusuke24eugene/laravel12-rest-api/internal/models"
)

// writeJSON сериализует v в тело ответа с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handlers] Ошибка кодирования JSON-ответа: %v", err)
	}
}

// writeMessage отправляет ответ вида {"message": "..."}.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeValidationErrors отправляет 422 с ошибками по полям:
// {"field": ["message", ...]}.
func writeValidationErrors(w http.ResponseWriter, ve models.ValidationErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, ve)
}

// writeServerError отправляет 500 без деталей: причина остается в логах.
func writeServerError(w http.ResponseWriter) {
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}
