package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/jobqueue"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
)

// HandleAdminRecomputeRanking queues a full ranking recompute
func (a *APIController) HandleAdminRecomputeRanking(c *fiber.Ctx) error {
	if a.jobs == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "unavailable", "Job queue not available")
	}

	userID := usercontext.GetUserID(c)
	job, err := a.jobs.EnqueueRankingRecompute(userID, jobqueue.ReasonManual)
	if err != nil {
		if errors.Is(err, jobqueue.ErrJobAlreadyQueued) {
			return errorJSON(c, fiber.StatusConflict, "already_queued", "A ranking recompute is already queued")
		}
		return internalError(c, "Failed to enqueue ranking recompute", err)
	}

	log.Infof("[Admin] User %d queued ranking recompute job %s", userID, job.ID)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// HandleAdminJobStats reports the job queue counters
func (a *APIController) HandleAdminJobStats(c *fiber.Ctx) error {
	if a.jobs == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "unavailable", "Job queue not available")
	}

	ctx := c.UserContext()
	stats, err := a.jobs.GetJobStats(ctx)
	if err != nil {
		return internalError(c, "Failed to load job statistics", err)
	}
	pending, err := a.jobs.GetQueueSize(ctx)
	if err != nil {
		return internalError(c, "Failed to load queue size", err)
	}

	return c.JSON(fiber.Map{
		"queue_size": pending,
		"stats":      stats,
	})
}

// HandleGetStats returns the public marketplace summary
func (a *APIController) HandleGetStats(c *fiber.Ctx) error {
	if a.stats == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "unavailable", "Statistics not available")
	}
	summary, err := a.stats.Get(c.UserContext())
	if err != nil {
		return internalError(c, "Failed to load statistics", err)
	}
	return c.JSON(summary)
}
