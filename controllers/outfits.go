package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"stylistoapi/models"
	"stylistoapi/outfit"
	"stylistoapi/services"
)

// History window fed into variety scoring.
const varietyHistorySize = 10

type GenerateOutfitIn struct {
	Count    int    `json:"count" validate:"omitempty,gte=1,lte=20"`
	Season   string `json:"season" validate:"omitempty,season"`
	Occasion string `json:"occasion" validate:"omitempty,occasion"`

	// Location opts the request into weather-aware scoring.
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`

	UsePreferences *bool `json:"use_preferences"`

	WithOuterwear  *bool  `json:"with_outerwear"`
	WithAccessory  *bool  `json:"with_accessory"`
	ExcludeItemIDs []uint `json:"exclude_item_ids"`

	// Seed fixes sampling for reproducible results; 0 lets the engine pick.
	Seed int64 `json:"seed"`
}

type ScoreOutfitIn struct {
	ItemIDs  []uint `json:"item_ids" validate:"required,min=1"`
	Season   string `json:"season" validate:"omitempty,season"`
	Occasion string `json:"occasion" validate:"omitempty,occasion"`

	Latitude       *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	UsePreferences *bool    `json:"use_preferences"`
}

type SaveOutfitIn struct {
	Name     string  `json:"name" validate:"omitempty,max=100"`
	ItemIDs  []uint  `json:"item_ids" validate:"required,min=1"`
	Source   string  `json:"source" validate:"omitempty,oneof=machine_generated user_assembled"`
	Season   *string `json:"season" validate:"omitempty,season"`
	Occasion *string `json:"occasion" validate:"omitempty,occasion"`
}

type OutfitCandidateOut struct {
	ItemIDs []string     `json:"item_ids"`
	Score   outfit.Score `json:"score"`
}

type GeneratedOutfitsOut struct {
	Candidates []OutfitCandidateOut `json:"candidates"`
	Requested  int                  `json:"requested"`
	Shortfall  int                  `json:"shortfall"`
}

type SavedOutfitOut struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	ItemIDs   []string     `json:"item_ids"`
	Source    string       `json:"source"`
	Score     outfit.Score `json:"score"`
	Notes     string       `json:"notes"`
	Season    *string      `json:"season"`
	Occasion  *string      `json:"occasion"`
	WornCount int          `json:"worn_count"`
	Favorite  bool         `json:"favorite"`
	CreatedAt string       `json:"created_at"`
}

type OutfitsController struct {
	FirebaseApp    *firebase.App
	WeatherService services.WeatherServiceProvider
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.POST("/generate", controller.GenerateOutfits)
	g.POST("/score", controller.ScoreOutfit)
	g.POST("/save", controller.SaveOutfit)
	g.GET("/list", controller.ListOutfits)
	g.POST("/:outfitId/wear", controller.WearOutfit)
	g.DELETE("/:outfitId", controller.DeleteOutfit)
}

// buildEngineContext assembles the optional scoring context from the request.
// Every part is independent; a missing part just leaves its dimension out.
func (controller *OutfitsController) buildEngineContext(c echo.Context, db *gorm.DB, user models.UserAccount,
	season string, occasion string, latitude *float64, longitude *float64, usePreferences *bool, withHistory bool) *outfit.Context {

	engineCtx := &outfit.Context{Season: season, Occasion: occasion}

	if latitude != nil && longitude != nil && controller.WeatherService != nil {
		snapshot, err := controller.WeatherService.CurrentWeather(c.Request().Context(), *latitude, *longitude)
		if err != nil {
			// Weather is best effort, the generation still runs without it.
			fmt.Printf("[User %v] Weather lookup failed: %v\n", user.ID, err)
			sentry.CaptureException(err)
		} else {
			engineCtx.Weather = snapshot
		}
	}

	if usePreferences == nil || *usePreferences {
		if prefs := userPreferenceVector(user); prefs != nil {
			engineCtx.Prefs = prefs
		}
	}

	if withHistory {
		var recent []models.SavedOutfit
		db.Where("owner_id = ?", user.ID).Order("created_at desc").Limit(varietyHistorySize).Find(&recent)
		for i := range recent {
			engineCtx.History = append(engineCtx.History, recent[i].ItemIDStrings())
		}
	}
	return engineCtx
}

// userPreferenceVector maps the stored profile axes onto the engine form.
// All-nil axes mean the user never set a profile; the dimension stays off.
func userPreferenceVector(user models.UserAccount) *outfit.PreferenceVector {
	if user.PrefFormality == nil && user.PrefBoldness == nil &&
		user.PrefLayering == nil && user.PrefColorfulness == nil {
		return nil
	}
	axis := func(v *float64) float64 {
		if v == nil {
			return 0.5
		}
		return *v
	}
	return &outfit.PreferenceVector{
		Formality:    axis(user.PrefFormality),
		Boldness:     axis(user.PrefBoldness),
		Layering:     axis(user.PrefLayering),
		Colorfulness: axis(user.PrefColorfulness),
	}
}

func (controller *OutfitsController) GenerateOutfits(c echo.Context) error {
	var req GenerateOutfitIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	if req.Count == 0 {
		req.Count = 5
	}

	var wardrobe []models.ClothingItem
	if err := db.Where("owner_id = ?", user.ID).Find(&wardrobe).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}

	engineCtx := controller.buildEngineContext(c, db, user, req.Season, req.Occasion,
		req.Latitude, req.Longitude, req.UsePreferences, true)

	var constraints *outfit.Constraints
	if req.WithOuterwear != nil || req.WithAccessory != nil || len(req.ExcludeItemIDs) > 0 {
		constraints = &outfit.Constraints{
			WithOuterwear: req.WithOuterwear,
			WithAccessory: req.WithAccessory,
		}
		for _, id := range req.ExcludeItemIDs {
			constraints.ExcludeItemIDs = append(constraints.ExcludeItemIDs, UIntToStr(id))
		}
	}

	result, err := outfit.Generate(models.EngineItems(wardrobe), req.Count, engineCtx, constraints,
		&outfit.GenerateOptions{Seed: req.Seed})
	if err != nil {
		if errors.Is(err, outfit.ErrInsufficientItems) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "Add a few more items to your closet to generate outfits"})
		}
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate outfits, please try again"})
	}

	response := GeneratedOutfitsOut{
		Candidates: make([]OutfitCandidateOut, 0, len(result.Candidates)),
		Requested:  result.Requested,
		Shortfall:  result.Shortfall,
	}
	for _, candidate := range result.Candidates {
		ids := make([]string, len(candidate.Items))
		for i, item := range candidate.Items {
			ids[i] = item.ID
		}
		response.Candidates = append(response.Candidates, OutfitCandidateOut{ItemIDs: ids, Score: candidate.Score})
	}
	fmt.Printf("[User %v] Generated %v outfits, shortfall %v\n", user.ID, len(response.Candidates), response.Shortfall)
	return c.JSON(http.StatusOK, response)
}

// fetchOwnedItems loads the referenced wardrobe rows and rejects ids that do
// not belong to the caller.
func fetchOwnedItems(db *gorm.DB, user models.UserAccount, itemIDs []uint) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	if err := db.Where("owner_id = ? AND id IN ?", user.ID, itemIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) != len(itemIDs) {
		return nil, gorm.ErrRecordNotFound
	}
	return items, nil
}

func (controller *OutfitsController) ScoreOutfit(c echo.Context) error {
	var req ScoreOutfitIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	items, err := fetchOwnedItems(db, user, req.ItemIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "One or more items were not found in your closet"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch items"})
	}

	engineCtx := controller.buildEngineContext(c, db, user, req.Season, req.Occasion,
		req.Latitude, req.Longitude, req.UsePreferences, false)
	score := outfit.ScoreItems(models.EngineItems(items), engineCtx, nil)
	return c.JSON(http.StatusOK, score)
}

func (controller *OutfitsController) SaveOutfit(c echo.Context) error {
	var req SaveOutfitIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	items, err := fetchOwnedItems(db, user, req.ItemIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "One or more items were not found in your closet"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch items"})
	}

	season := ""
	occasion := ""
	if req.Season != nil {
		season = *req.Season
	}
	if req.Occasion != nil {
		occasion = *req.Occasion
	}
	score := outfit.ScoreItems(models.EngineItems(items), &outfit.Context{Season: season, Occasion: occasion}, nil)
	scoreJSON, err := outfit.MarshalScore(score)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save the outfit, please try again"})
	}

	source := req.Source
	if source == "" {
		source = "user_assembled"
	}
	saved := models.SavedOutfit{
		Name:       req.Name,
		OwnerID:    user.ID,
		Source:     source,
		TotalScore: score.Total,
		ScoreJSON:  scoreJSON,
		Notes:      outfit.FormatScoreNotes(score),
		Season:     req.Season,
		Occasion:   req.Occasion,
	}
	saved.ItemIDs = make(pq.Int64Array, len(req.ItemIDs))
	for i, id := range req.ItemIDs {
		saved.ItemIDs[i] = int64(id)
	}
	if err := db.Create(&saved).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save the outfit, please try again"})
	}
	return c.JSON(http.StatusCreated, savedOutfitToResponse(saved))
}

// savedOutfitToResponse prefers the stored JSON breakdown. Rows written by
// older clients only carry the "Score: NN%" notes string; those surface the
// parsed total with no per-dimension breakdown rather than a made-up one.
func savedOutfitToResponse(saved models.SavedOutfit) SavedOutfitOut {
	score, err := outfit.UnmarshalScore(saved.ScoreJSON)
	if err != nil || saved.ScoreJSON == "" {
		if legacy, ok := outfit.ParseScoreNotes(saved.Notes); ok {
			score = legacy
		} else {
			score = outfit.Score{Total: saved.TotalScore}
		}
	}
	return SavedOutfitOut{
		ID:        UIntToStr(saved.ID),
		Name:      saved.Name,
		ItemIDs:   saved.ItemIDStrings(),
		Source:    saved.Source,
		Score:     score,
		Notes:     saved.Notes,
		Season:    saved.Season,
		Occasion:  saved.Occasion,
		WornCount: saved.WornCount,
		Favorite:  saved.Favorite,
		CreatedAt: saved.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (controller *OutfitsController) ListOutfits(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var saved []models.SavedOutfit
	if err := db.Where("owner_id = ?", user.ID).Order("created_at desc").Find(&saved).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch outfits"})
	}
	response := make([]SavedOutfitOut, 0, len(saved))
	for _, s := range saved {
		response = append(response, savedOutfitToResponse(s))
	}
	return c.JSON(http.StatusOK, response)
}

func fetchOwnedOutfit(c echo.Context, db *gorm.DB, user models.UserAccount) (*models.SavedOutfit, error) {
	var outfitId uint
	if err := echo.PathParamsBinder(c).Uint("outfitId", &outfitId).BindError(); err != nil {
		return nil, echo.ErrBadRequest
	}
	var saved models.SavedOutfit
	r := db.Limit(1).Find(&saved, "id = ? AND owner_id = ?", outfitId, user.ID)
	if r.Error != nil {
		return nil, echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return nil, echo.ErrNotFound
	}
	return &saved, nil
}

// WearOutfit records a wear of the whole combination. Both the outfit counter
// and the member items' counters move so variety scoring sees the usage.
func (controller *OutfitsController) WearOutfit(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	saved, err := fetchOwnedOutfit(c, db, user)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	saved.WornCount = saved.WornCount + 1
	if err := db.Save(saved).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to record the wear, please try again"})
	}
	if len(saved.ItemIDs) > 0 {
		itemIDs := make([]int64, len(saved.ItemIDs))
		copy(itemIDs, saved.ItemIDs)
		err := db.Model(&models.ClothingItem{}).
			Where("owner_id = ? AND id IN ?", user.ID, itemIDs).
			Updates(map[string]interface{}{
				"wear_count":   gorm.Expr("wear_count + 1"),
				"last_worn_at": now,
			}).Error
		if err != nil {
			sentry.CaptureException(err)
		}
	}
	return c.JSON(http.StatusOK, savedOutfitToResponse(*saved))
}

func (controller *OutfitsController) DeleteOutfit(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	saved, err := fetchOwnedOutfit(c, db, user)
	if err != nil {
		return err
	}
	if err := db.Delete(saved).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete the outfit, please try again"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted"})
}
