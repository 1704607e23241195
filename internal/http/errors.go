package httpapi

import (
	"errors"
	"net/http"

	"hydrosense-data/internal/domain"

	"go.uber.org/zap"
)

// statusForKind 领域错误 → HTTP 状态码
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrKindNotFound:
		return http.StatusNotFound
	case domain.ErrKindUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrKindForbidden:
		return http.StatusForbidden
	case domain.ErrKindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError 写出领域错误；未知错误统一 500，细节只进日志不出响应
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		writeJSON(w, statusForKind(de.Kind), Fail(de.Message))
		return
	}
	logger.Error("Unhandled error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Fail("internal server error"))
}
