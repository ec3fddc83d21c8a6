package controllers

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"stylistoapi/models"
)

type ProfileSettingsIn struct {
	ReceiveNotifications   *bool `json:"receive_notifications"`
	DailySuggestionEnabled *bool `json:"daily_suggestion_enabled"`
}

type ProfileController struct {
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("/me", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)

		var prefs *models.PreferencesIn
		if user.PrefFormality != nil || user.PrefBoldness != nil ||
			user.PrefLayering != nil || user.PrefColorfulness != nil {
			prefs = &models.PreferencesIn{
				Formality:    user.PrefFormality,
				Boldness:     user.PrefBoldness,
				Layering:     user.PrefLayering,
				Colorfulness: user.PrefColorfulness,
			}
		}
		return c.JSON(http.StatusOK, models.UserMeOut{
			Id:                     UIntToStr(user.ID),
			Name:                   user.Name,
			Email:                  user.Email,
			AvatarURL:              user.AvatarURL,
			Subscription:           user.Subscription,
			ReceiveNotifications:   user.ReceiveNotifications,
			DailySuggestionEnabled: user.DailySuggestionEnabled,
			Preferences:            prefs,
		})
	})

	g.GET("/preferences", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		return c.JSON(http.StatusOK, models.PreferencesIn{
			Formality:    user.PrefFormality,
			Boldness:     user.PrefBoldness,
			Layering:     user.PrefLayering,
			Colorfulness: user.PrefColorfulness,
		})
	})

	g.PUT("/preferences", func(c echo.Context) error {
		var req models.PreferencesIn
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)

		if req.Formality != nil {
			user.PrefFormality = req.Formality
		}
		if req.Boldness != nil {
			user.PrefBoldness = req.Boldness
		}
		if req.Layering != nil {
			user.PrefLayering = req.Layering
		}
		if req.Colorfulness != nil {
			user.PrefColorfulness = req.Colorfulness
		}
		if err := db.Save(&user).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save preferences"})
		}
		return c.JSON(http.StatusOK, models.PreferencesIn{
			Formality:    user.PrefFormality,
			Boldness:     user.PrefBoldness,
			Layering:     user.PrefLayering,
			Colorfulness: user.PrefColorfulness,
		})
	})

	g.PUT("/settings", func(c echo.Context) error {
		var req ProfileSettingsIn
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)

		if req.ReceiveNotifications != nil {
			user.ReceiveNotifications = *req.ReceiveNotifications
		}
		if req.DailySuggestionEnabled != nil {
			user.DailySuggestionEnabled = *req.DailySuggestionEnabled
		}
		if err := db.Save(&user).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to save settings"})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Saved"})
	})

	g.POST("/push", func(c echo.Context) error {
		var req models.UserPushIn
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if req.Token == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Token is required"})
		}
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)

		var existing models.UserPushToken
		r := db.Limit(1).Find(&existing, "user_account_id = ? AND token = ?", user.ID, req.Token)
		if r.RowsAffected > 0 {
			existing.Active = true
			db.Save(&existing)
			return c.JSON(http.StatusOK, echo.Map{"message": "Token refreshed"})
		}
		tokenDb := models.UserPushToken{
			UserAccountID: user.ID,
			Platform:      models.Platform(req.Platform),
			Token:         req.Token,
			Active:        true,
		}
		if err := db.Create(&tokenDb).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to register the token"})
		}
		return c.JSON(http.StatusCreated, echo.Map{"message": "Token registered"})
	})
}
