package progressValidator

import (
	"lms/middleware"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// SaveProgressRequest is one watch event from the player. Exactly one of
// ContentID / BatchContentID must be set.
type SaveProgressRequest struct {
	ContentID      *uint       `json:"content_id"`
	BatchContentID *uint       `json:"batch_content_id"`
	CurrentTime    float64     `json:"current_time"`
	Duration       float64     `json:"duration"`
	WatchedSegment *[2]float64 `json:"watched_segment"`
}

// SaveProgress validates a watch event payload
func SaveProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SaveProgressRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ContentID == nil && reqData.BatchContentID == nil {
			errors["content_id"] = "Either content_id or batch_content_id is required!"
		}
		if reqData.ContentID != nil && reqData.BatchContentID != nil {
			errors["content_id"] = "Only one of content_id and batch_content_id may be set!"
		}
		if reqData.CurrentTime < 0 {
			errors["current_time"] = "current_time cannot be negative!"
		}
		if reqData.Duration < 0 {
			errors["duration"] = "duration cannot be negative!"
		}
		if reqData.WatchedSegment != nil {
			if reqData.WatchedSegment[0] < 0 {
				errors["watched_segment"] = "segment start cannot be negative!"
			} else if reqData.WatchedSegment[0] > reqData.WatchedSegment[1] {
				errors["watched_segment"] = "segment start cannot exceed segment end!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

// ContentRefParams validates the /:ref_type/:ref_id progress read path
func ContentRefParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		refType := c.Params("ref_type")
		if refType != "content" && refType != "batch_content" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid ref_type!", nil)
		}

		refID, err := strconv.Atoi(c.Params("ref_id"))
		if err != nil || refID < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid ref_id!", nil)
		}

		c.Locals("refType", refType)
		c.Locals("refID", refID)
		return c.Next()
	}
}
