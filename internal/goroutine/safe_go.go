package goroutine

import (
	"runtime/debug"

	"github.com/proposalpilot/backend/internal/logger"
)

// SafeGo запускает горутину с обработкой panic.
// Используется для best-effort фоновой работы (уведомления, трекинг),
// падение которой не должно ронять процесс.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if logger.Log != nil {
					logger.Log.Errorf("goroutine: panic перехвачен: %v\n%s", r, debug.Stack())
				}
			}
		}()
		fn()
	}()
}
