package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/app/models"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/referral"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/usercontext"
	"github.com/ManuelReschke/PlanoCerto/internal/pkg/utils"
)

// SearchHistoryLimit is the number of distinct CEPs returned by the history endpoint
const SearchHistoryLimit = 10

// HandleGetUserProfile returns the account, questionnaire profile, badges and activity counts.
// referral_code is what the member shares; new accounts pass it on signup.
func (a *APIController) HandleGetUserProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := usercontext.GetUserID(c)

	account, err := a.repos.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return internalError(c, "Failed to load user", err)
	}

	var profile *models.UserProfile
	profile, err = a.repos.Profile.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internalError(c, "Failed to load profile", err)
		}
		profile = nil
	}

	earned, err := a.repos.Badge.ListByUser(ctx, userID)
	if err != nil {
		return internalError(c, "Failed to load badges", err)
	}
	reviewCount, err := a.repos.Review.CountByUser(ctx, userID)
	if err != nil {
		return internalError(c, "Failed to load statistics", err)
	}
	favoriteCount, err := a.repos.Favorite.CountByUser(ctx, userID)
	if err != nil {
		return internalError(c, "Failed to load statistics", err)
	}

	if earned == nil {
		earned = []models.UserBadge{}
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":             account.ID,
			"name":           account.Name,
			"email":          account.Email,
			"address":        account.Address,
			"role":           account.Role,
			"avatar_url":     utils.GetGravatarURL(account.Email, utils.AvatarSize),
			"referral_code":  referral.Code(account.ID),
			"created_at":     account.CreatedAt.UTC().Format(time.RFC3339),
			"last_login_at":  formatTimePtr(account.LastLoginAt),
			"profile":        profile,
			"badges":         earned,
			"review_count":   reviewCount,
			"favorite_count": favoriteCount,
		},
	})
}

// HandleGetSearchHistory returns the caller's most recent distinct CEP searches
func (a *APIController) HandleGetSearchHistory(c *fiber.Ctx) error {
	history, err := a.repos.SearchHistory.RecentDistinct(c.UserContext(), usercontext.GetUserID(c), SearchHistoryLimit)
	if err != nil {
		return internalError(c, "Failed to load search history", err)
	}
	if history == nil {
		history = []models.SearchHistory{}
	}
	return c.JSON(fiber.Map{"history": history})
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
