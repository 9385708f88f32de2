// Package handler chứa các handler xử lý request HTTP của data layer.
// Mọi handler đi qua SafeHandler để bắt panic và HandleResponse để chuẩn
// hóa format response.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"

	"github.com/lovelidevs/HmisGo/core/api/services"
	"github.com/lovelidevs/HmisGo/core/common"
	"github.com/lovelidevs/HmisGo/core/logger"
)

// Handler gom các endpoint của data layer quanh một session.
type Handler struct {
	session *services.Session
}

// NewHandler tạo Handler trên một session đã mở.
func NewHandler(session *services.Session) *Handler {
	return &Handler{session: session}
}

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// SafeHandler bọc handler với recover để server luôn trả về response cho
// client kể cả khi có panic xảy ra.
func (h *Handler) SafeHandler(c fiber.Ctx, handler func() error) error {
	defer func() {
		if r := recover(); r != nil {
			debug.PrintStack()
			h.HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				fmt.Sprintf("Lỗi hệ thống không mong muốn: %v", r),
				common.StatusInternalServerError,
				nil,
			))
		}
	}()
	return handler()
}

// HandleResponse xử lý và chuẩn hóa response trả về cho client.
// PartialSubmissionError được map riêng để client nhận đủ thông tin retry.
func (h *Handler) HandleResponse(c fiber.Ctx, data interface{}, err error) {
	if err != nil {
		var partialErr *common.PartialSubmissionError
		if errors.As(err, &partialErr) {
			logger.GetErrorLogger().WithError(err).WithFields(map[string]interface{}{
				"failedIndex": partialErr.FailedIndex,
				"step":        partialErr.Step,
				"path":        c.Path(),
			}).Error("Submission dừng giữa chừng")
			JSONResponse(c, common.StatusInternalServerError, fiber.Map{
				"code":        common.ErrCodeSubmission.Code,
				"message":     partialErr.Error(),
				"failedIndex": partialErr.FailedIndex,
				"noteCreated": partialErr.NoteCreated,
				"step":        partialErr.Step,
				"status":      "error",
			})
			return
		}

		var customErr *common.Error
		if errors.As(err, &customErr) {
			if customErr.StatusCode >= common.StatusInternalServerError {
				logger.GetErrorLogger().WithError(err).WithFields(map[string]interface{}{
					"code": customErr.Code.Code,
					"path": c.Path(),
				}).Error("Request thất bại vì lỗi server")
			}
			JSONResponse(c, customErr.StatusCode, fiber.Map{
				"code":    customErr.Code.Code,
				"message": customErr.Message,
				"details": customErr.Details,
				"status":  "error",
			})
			return
		}

		logger.GetErrorLogger().WithError(err).WithField("path", c.Path()).
			Error("Request thất bại vì lỗi không phân loại")
		JSONResponse(c, common.StatusInternalServerError, fiber.Map{
			"code":    common.ErrCodeDatabase.Code,
			"message": err.Error(),
			"status":  "error",
		})
		return
	}

	JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": "Thành công",
		"data":    data,
		"status":  "success",
	})
}

// ParseRequestBody parse request body JSON vào input struct.
func (h *Handler) ParseRequestBody(c fiber.Ctx, input interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(
			common.ErrCodeValidationFormat,
			fmt.Sprintf("Dữ liệu gửi lên không đúng định dạng JSON hoặc không khớp với cấu trúc yêu cầu. Chi tiết: %v", err),
			common.StatusBadRequest,
			err,
		)
	}
	return nil
}
