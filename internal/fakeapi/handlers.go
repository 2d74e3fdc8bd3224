// Package fakeapi содержит in-memory реализацию REST API объявлений для локальной разработки.
package fakeapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/RoGogDBD/salesitems/internal/models"
	"github.com/RoGogDBD/salesitems/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	storage  *MemStorage
	validate *validator.Validate
	verifier TokenVerifier
}

// NewHandler создает обработчики. verifier может быть nil: тогда запросы не аутентифицируются.
func NewHandler(storage *MemStorage, verifier TokenVerifier) *Handler {
	return &Handler{
		storage:  storage,
		validate: validation.New(),
		verifier: verifier,
	}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// HealthHandler возвращает статус 200 OK и тело "OK" для проверки состояния сервера.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ListItems возвращает все объявления.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.storage.List())
}

// GetItem возвращает объявление по id.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.storage.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateItem проверяет и сохраняет новое объявление. Id назначает хранилище.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if caller, ok := CallerFrom(r.Context()); ok {
		if item.SellerEmail == "" {
			item.SellerEmail = caller.Email
		}
		item.UserID = caller.UID
	}

	if errs := validation.ValidateItem(h.validate, item); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: errs})
		return
	}

	saved := h.storage.Save(item)
	log.Printf("[fakeapi] created item %d (%q)", saved.ID, saved.Description)
	writeJSON(w, http.StatusCreated, saved)
}

// DeleteItem удаляет объявление. При включенной аутентификации удалять может только продавец.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.storage.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if caller, ok := CallerFrom(r.Context()); ok && !item.OwnedBy(caller.Email) {
		writeError(w, http.StatusForbidden, "only the seller can delete this item")
		return
	}

	deleted, err := h.storage.Delete(id)
	if errors.Is(err, ErrItemNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	log.Printf("[fakeapi] deleted item %d", id)
	writeJSON(w, http.StatusOK, deleted)
}

func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id parameter")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[fakeapi] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
