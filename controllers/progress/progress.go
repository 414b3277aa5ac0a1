package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/progress"
	progressValidator "lms/validators/progress"

	"github.com/gofiber/fiber/v2"
)

// SaveProgress records one watch event: the moved playhead and optionally
// a newly watched segment. Returns the re-merged snapshot.
func SaveProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedProgress").(*progressValidator.SaveProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var ref courseModels.ContentRef
	if reqData.BatchContentID != nil {
		ref = courseModels.LiveRef(*reqData.BatchContentID)
	} else {
		ref = courseModels.RecordedRef(*reqData.ContentID)
	}

	upd := progress.WatchUpdate{
		Ref:      ref,
		Position: reqData.CurrentTime,
		Duration: reqData.Duration,
	}
	if reqData.WatchedSegment != nil {
		segment := courseModels.Segment(*reqData.WatchedSegment)
		upd.Segment = &segment
	}

	svc := progress.NewService(database.Database.Db)
	snapshot, err := svc.RecordWatch(userID, upd)
	if err != nil {
		return middleware.ServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress saved successfully!", fiber.Map{
		"progress": snapshot,
	})
}

// GetProgress returns the stored snapshot for one content unit, zero-valued
// when the student has not watched it yet.
func GetProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	refType := c.Locals("refType").(string)
	refID := c.Locals("refID").(int)

	var ref courseModels.ContentRef
	if refType == courseModels.RefLive {
		ref = courseModels.LiveRef(uint(refID))
	} else {
		ref = courseModels.RecordedRef(uint(refID))
	}

	svc := progress.NewService(database.Database.Db)
	snapshot, err := svc.GetProgress(userID, ref)
	if err != nil {
		return middleware.ServiceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", snapshot)
}
