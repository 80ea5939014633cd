package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Inline uploads are capped at 10 MB of decoded file content. Base64 inflates
// the payload by 4/3, so the encoded body gets a proportionally larger cap.
const (
	maxUploadBytes        = 10 * 1024 * 1024
	maxUploadEncodedBytes = maxUploadBytes/3*4 + 1024
)

type UploadRequest struct {
	FileData string `json:"fileData" validate:"required"`
	FileName string `json:"fileName" validate:"required"`
	FileType string `json:"fileType" validate:"required"`
	FileSize *int64 `json:"fileSize"`
}

// UploadFile accepts an inline-encoded (data URL) file and echoes it back as
// the file URL. There is no external object storage; the payload itself is
// what gets stored on the message row.
func UploadFile(c *fiber.Ctx) error {
	var req UploadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "fileData, fileName, and fileType are required"})
	}

	if req.FileSize != nil && *req.FileSize > maxUploadBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File size exceeds 10MB limit"})
	}
	if len(req.FileData) > maxUploadEncodedBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File size exceeds 10MB limit"})
	}

	return c.JSON(fiber.Map{
		"fileUrl":  req.FileData,
		"fileName": req.FileName,
		"fileType": req.FileType,
		"fileSize": req.FileSize,
	})
}
