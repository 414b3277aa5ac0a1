package courseValidator

import (
	"lms/middleware"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// CourseIDParam validates the :id route parameter and stores it as an int
func CourseIDParam() fiber.Handler {
	return idParam("id", "courseID")
}

// ModuleIDParam validates the :module_id route parameter
func ModuleIDParam() fiber.Handler {
	return idParam("module_id", "moduleID")
}

// ContentIDParam validates the :content_id route parameter
func ContentIDParam() fiber.Handler {
	return idParam("content_id", "contentID")
}

func idParam(param, local string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value, err := strconv.Atoi(c.Params(param))
		if err != nil || value < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+param+"!", nil)
		}
		c.Locals(local, value)
		return c.Next()
	}
}

// CourseList validates optional pagination query params
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `query:"page"`
			Limit *int `query:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		page := 1
		limit := 10
		if reqData.Page != nil {
			page = *reqData.Page
		}
		if reqData.Limit != nil {
			limit = *reqData.Limit
		}
		c.Locals("page", page)
		c.Locals("limit", limit)
		return c.Next()
	}
}
