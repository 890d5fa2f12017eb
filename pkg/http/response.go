package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes the standard envelope with the given status code.
// The HTTP response itself is always 200; the envelope carries the code.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// SuccessResponse writes a 200 envelope.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// ListResponse writes a paginated list envelope.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return DataResponse(c, http.StatusOK, &ListDataResponse{
		Rows:  rows,
		Total: total,
	})
}

// BadRequestResponse writes a 400 envelope.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

// NotFoundResponse writes a 404 envelope.
func NotFoundResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusNotFound, data)
}

// InternalServerErrorResponse writes a 500 envelope.
func InternalServerErrorResponse(c echo.Context) error {
	return DataResponse(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes an application error envelope.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DataResponse(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
