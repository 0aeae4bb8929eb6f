package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/proposalpilot/backend/internal/repository"
	"github.com/proposalpilot/backend/internal/service"
)

func TestMapError_KnownSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"предложение не найдено", repository.ErrProposalNotFound, http.StatusNotFound},
		{"пользователь не найден", repository.ErrUserNotFound, http.StatusNotFound},
		{"повторный ответ", repository.ErrAlreadyResponded, http.StatusConflict},
		{"занятый email", service.ErrEmailTaken, http.StatusConflict},
		{"терминальное предложение", service.ErrProposalLocked, http.StatusConflict},
		{"ошибка валидации", fmt.Errorf("%w: title is required", service.ErrInvalidInput), http.StatusBadRequest},
		{"неверные учётные данные", service.ErrInvalidCredentials, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := mapError(tc.err)
			if status != tc.status {
				t.Fatalf("ожидали %d, получили %d", tc.status, status)
			}
		})
	}
}

func TestMapError_MasksInternalErrors(t *testing.T) {
	// Необёрнутая ошибка хранилища не должна доходить до клиента.
	internal := fmt.Errorf("user repository: create %w", errors.New("pq: connection refused host=db-internal"))

	status, message := mapError(internal)
	if status != http.StatusInternalServerError {
		t.Fatalf("ожидали 500, получили %d", status)
	}
	if message != "internal server error" {
		t.Fatalf("внутренняя ошибка должна маскироваться, получили %q", message)
	}
	if strings.Contains(message, "db-internal") {
		t.Fatalf("детали хранилища утекли клиенту: %q", message)
	}
}
