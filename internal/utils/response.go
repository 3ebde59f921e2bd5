package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every endpoint responds with. Error carries the
// error class name on failures; Count accompanies list payloads.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendList sends a successful list payload together with its length.
func SendList(c *fiber.Ctx, message string, data interface{}, count int) error {
	return SendListWithStatus(c, fiber.StatusOK, message, data, count)
}

// SendListWithStatus is SendList with an explicit status code.
func SendListWithStatus(c *fiber.Ctx, status int, message string, data interface{}, count int) error {
	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
		Count:   &count,
	})
}

// SendError sends an error JSON response with the given status code. kind is
// the error class, for example ValidationError.
func SendError(c *fiber.Ctx, status int, kind, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Error:   kind,
	})
}
