package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
)

// withIdempotency выполняет обработчик с учётом Idempotency-Key.
// Ключ опционален: без заголовка (или без репозитория) запрос обрабатывается
// напрямую. Повтор с тем же ключом и тем же телом получает сохранённый ответ,
// повтор с другим телом — конфликт.
func (h *Handler) withIdempotency(
	w http.ResponseWriter,
	r *http.Request,
	body []byte,
	handler func() (int, any),
) {
	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if h.idem == nil || key == "" {
		status, payload := handler()
		writeJSON(w, status, payload)
		return
	}

	requestHash := buildRequestHash(r.Method, r.URL.Path, body)

	record, err := h.idem.CreateProcessing(key, requestHash, time.Now().UTC().Add(idempotencyTTL))
	if err != nil {
		h.replayIdempotency(w, key, record, err)
		return
	}

	status, payload := handler()

	responseBody, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		h.logger.WithError(marshalErr).WithField("idempotency_key", key).
			Warn("failed to encode idempotent response")
		responseBody = nil
	}

	var storeErr error
	if status >= 200 && status < 300 {
		storeErr = h.idem.MarkDone(key, responseBody, status)
	} else {
		storeErr = h.idem.MarkFailed(key, responseBody, status)
	}
	if storeErr != nil {
		h.logger.WithError(storeErr).WithField("idempotency_key", key).
			Warn("failed to store idempotent response")
	}

	writeJSON(w, status, payload)
}

func (h *Handler) replayIdempotency(w http.ResponseWriter, key string, record domain.IdempotencyRecord, createErr error) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		writeError(w, http.StatusConflict, "idempotency_conflict",
			"idempotency key is already used with different request payload")
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			if len(record.ResponseBody) == 0 || record.HTTPStatus == 0 {
				writeError(w, http.StatusInternalServerError, "idempotency_cache_empty", "")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(record.HTTPStatus)
			_, _ = w.Write(record.ResponseBody)
		case domain.IdempotencyStatusProcessing:
			writeError(w, http.StatusConflict, "idempotency_processing",
				"request with the same idempotency key is already processing")
		default:
			writeError(w, http.StatusInternalServerError, "idempotency_unknown_status", "")
		}
	default:
		h.logger.WithError(createErr).WithField("idempotency_key", key).
			Warn("failed to create idempotency record")
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func buildRequestHash(method, path string, body []byte) string {
	payload := make([]byte, 0, len(method)+len(path)+len(body)+2)
	payload = append(payload, method...)
	payload = append(payload, ' ')
	payload = append(payload, path...)
	payload = append(payload, ':')
	payload = append(payload, body...)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
