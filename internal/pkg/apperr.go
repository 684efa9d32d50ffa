package pkg

import (
	"errors"
	"fmt"
	"net/http"
)

// 引擎统一错误分类。冲突类都包着 ErrConflict，方便上层一次 errors.Is 判断。
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

var (
	ErrActiveRoundExists    = fmt.Errorf("%w: active round exists", ErrConflict)
	ErrGameAlreadyNominated = fmt.Errorf("%w: game already nominated", ErrConflict)
	ErrAlreadyNominated     = fmt.Errorf("%w: already nominated", ErrConflict)
	ErrAlreadyVoted         = fmt.Errorf("%w: already voted", ErrConflict)
	ErrAlreadyReviewed      = fmt.Errorf("%w: already reviewed", ErrConflict)
	ErrAlreadyAnswered      = fmt.Errorf("%w: already answered", ErrConflict)

	// 今日实例先参与后看结果
	ErrResultsHidden = fmt.Errorf("%w: results hidden until participation", ErrForbidden)
)

// HTTPStatus 错误到状态码的唯一映射，handler 不再各写各的
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
