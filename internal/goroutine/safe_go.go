package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gigwork-backend/internal/logger"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	WithFields(fields logrus.Fields) *logrus.Entry
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// Go запускает горутину с обработкой panic. done, если задан, вызывается в любом случае.
func (rh *RecoveryHandler) Go(name string, fn func(), done ...func()) {
	go func() {
		defer func() {
			for _, d := range done {
				d()
			}
		}()
		defer rh.recover(name)
		fn()
	}()
}

// GoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) GoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer rh.recover(name)
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) recover(name string) {
	if r := recover(); r != nil {
		rh.logger.WithFields(logrus.Fields{
			"goroutine": name,
			"panic":     r,
			"stack":     string(debug.Stack()),
		}).Error("panic в горутине")
	}
}

// SafeGo запускает именованную горутину через обработчик с общим логгером.
func SafeGo(name string, fn func()) {
	NewRecoveryHandler(logger.Log).Go(name, fn)
}

// SafeGoWithContext запускает горутину с контекстом через обработчик с общим логгером.
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	NewRecoveryHandler(logger.Log).GoWithContext(ctx, name, fn)
}
