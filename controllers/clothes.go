package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"stylistoapi/models"
	"stylistoapi/services"
	"stylistoapi/tasks"
)

// Free plan cap on closet size unless an explicit limit is set on the account.
const freePlanItemLimit = 20

type CreateClothingIn struct {
	Name        string   `json:"name" validate:"omitempty,max=100"`
	FileName    *string  `json:"file_name" validate:"required,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Category    string   `json:"category" validate:"omitempty,category"`
	Subcategory *string  `json:"subcategory" validate:"omitempty,max=100"`
	Color       string   `json:"color" validate:"omitempty,max=50"`
	Seasons     []string `json:"seasons" validate:"omitempty,dive,season"`
	Occasions   []string `json:"occasions" validate:"omitempty,dive,occasion"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Brand       *string  `json:"brand" validate:"omitempty,max=100"`
	Size        *string  `json:"size" validate:"omitempty,max=30"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`

	// Classify asks the vision pipeline to fill the attributes from the
	// uploaded photo once it lands in storage.
	Classify           *bool `json:"classify"`
	AlertWhenProcessed *bool `json:"alert_when_processed"`
}

type UpdateClothingIn struct {
	Name        *string  `json:"name" validate:"omitempty,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Category    *string  `json:"category" validate:"omitempty,category"`
	Subcategory *string  `json:"subcategory" validate:"omitempty,max=100"`
	Color       *string  `json:"color" validate:"omitempty,max=50"`
	Seasons     []string `json:"seasons" validate:"omitempty,dive,season"`
	Occasions   []string `json:"occasions" validate:"omitempty,dive,occasion"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Brand       *string  `json:"brand" validate:"omitempty,max=100"`
	Size        *string  `json:"size" validate:"omitempty,max=30"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Favorite    *bool    `json:"favorite"`
}

type ClothingResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      *string    `json:"description"`
	Category         string     `json:"category"`
	Subcategory      *string    `json:"subcategory"`
	Color            string     `json:"color"`
	Seasons          []string   `json:"seasons"`
	Occasions        []string   `json:"occasions"`
	Tags             []string   `json:"tags"`
	Brand            *string    `json:"brand"`
	Size             *string    `json:"size"`
	Price            *float64   `json:"price"`
	Favorite         bool       `json:"favorite"`
	WearCount        int        `json:"wear_count"`
	LastWornAt       *time.Time `json:"last_worn_at"`
	ProcessingStatus string     `json:"processing_status"`
	Uri              *string    `json:"uri,omitempty"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
}

type ClothingCreatedResponse struct {
	Clothing      ClothingResponse `json:"clothing"`
	FileUploadUrl string           `json:"file_upload_url"`
}

type ClothesController struct {
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *ClothesController) ClothingRoutes(g *echo.Group) {
	g.POST("/create", controller.CreateClothing)
	g.GET("/list", controller.ListClothes)
	g.GET("/queue", controller.QueueStatus)
	g.PUT("/:clothingId", controller.UpdateClothing)
	g.DELETE("/:clothingId", controller.DeleteClothing)
	g.POST("/:clothingId/wear", controller.WearClothing)
}

func clothingToResponse(item models.ClothingItem, uri *string) ClothingResponse {
	return ClothingResponse{
		ID:               UIntToStr(item.ID),
		Name:             item.Name,
		Description:      item.Description,
		Category:         item.Category,
		Subcategory:      item.Subcategory,
		Color:            item.Color,
		Seasons:          item.Seasons,
		Occasions:        item.Occasions,
		Tags:             item.Tags,
		Brand:            item.Brand,
		Size:             item.Size,
		Price:            item.Price,
		Favorite:         item.Favorite,
		WearCount:        item.WearCount,
		LastWornAt:       item.LastWornAt,
		ProcessingStatus: item.ProcessingStatus,
		Uri:              uri,
		CreatedAt:        item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (controller *ClothesController) CreateClothing(c echo.Context) error {
	var req CreateClothingIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	if req.FileName == nil || *req.FileName == "" {
		sentry.CaptureException(fmt.Errorf("Image was not provided when creating clothing %s, user %v", req.Name, user.ID))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}
	if !services.IsAllowedImageFile(*req.FileName) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported photo format, please upload a jpg, png, heic or webp file"})
	}

	itemLimit := int64(freePlanItemLimit)
	if user.EnforcedItemLimit != nil {
		itemLimit = int64(*user.EnforcedItemLimit)
	}
	if string(user.Subscription) == "free" || user.EnforcedItemLimit != nil {
		var totalItemCount int64
		if err := db.Model(&models.ClothingItem{}).Where("owner_id = ?", user.ID).Count(&totalItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		fmt.Printf("[User %v] Item limit %v, wardrobe size: %v\n", user.ID, itemLimit, totalItemCount)
		if totalItemCount >= itemLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v items in your closet, please subscribe", itemLimit)})
		}
	}

	item := models.ClothingItem{
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Subcategory:      req.Subcategory,
		Color:            req.Color,
		Seasons:          req.Seasons,
		Occasions:        req.Occasions,
		Tags:             req.Tags,
		Brand:            req.Brand,
		Size:             req.Size,
		Price:            req.Price,
		OwnerID:          user.ID,
		ImageStatus:      "draft",
		ProcessingStatus: "idle",
	}
	if req.AlertWhenProcessed != nil {
		item.AlertWhenProcessed = *req.AlertWhenProcessed
	}

	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	safeFileName := fmt.Sprintf("clothes/%s", *req.FileName)
	uploadUrl, presignErr := controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
	item.ImageURL = &safeFileName
	if presignErr != nil {
		log.Printf("Unable to presign upload for %s!, %s", item.Name, presignErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error while creating item with attachment",
		})
	}
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}

	if req.Classify != nil && *req.Classify {
		item.ProcessingStatus = "pending"
		if err := db.Save(&item).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update item status, please try again"})
		}
		task, err := tasks.NewClothingClassifyTask(item.ID)
		if err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process the item, please try again"})
		}
		info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("classify"), asynq.ProcessIn(30*time.Second))
		if err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process the item, please try again"})
		}
		fmt.Println("[Queue] Classify clothing task submitted, Clothing ID: ", item.ID, " Task ID: ", info.ID)
	}

	response := ClothingCreatedResponse{
		Clothing:      clothingToResponse(item, nil),
		FileUploadUrl: uploadUrl,
	}
	return c.JSON(http.StatusCreated, response)
}

// populatePresignedClothingImages enriches the rows with presigned read URLs
// concurrently, going through the URL cache with a direct R2 failsafe.
func (controller *ClothesController) populatePresignedClothingImages(ctx context.Context, clothes []models.ClothingItem) []ClothingResponse {
	if len(clothes) == 0 {
		return []ClothingResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]ClothingResponse, len(clothes))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, clothingItem := range clothes {
		wg.Add(1)
		go func(index int, item models.ClothingItem) {
			defer wg.Done()

			var imageUrl string
			objectKey := ""
			if item.ImageURL != nil {
				objectKey = *item.ImageURL
			}
			// Prefer the whitened copy when the classify pipeline produced one.
			if item.ProcessedImageURL != nil && *item.ProcessedImageURL != "" {
				objectKey = *item.ProcessedImageURL
			}
			if objectKey != "" {
				url, err := controller.URLCache.GetReadURL(ctx, objectKey)
				if err == nil {
					imageUrl = url
				} else {
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)
					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})

					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
						// imageUrl stays empty, the rest of the list still renders.
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = clothingToResponse(item, &imageUrl)
		}(i, clothingItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *ClothesController) ListClothes(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var clothes []models.ClothingItem
	if err := db.Where("owner_id = ?", user.ID).Order("created_at desc").Find(&clothes).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	processedResponses := controller.populatePresignedClothingImages(c.Request().Context(), clothes)

	// Grouped by category, every category key always present.
	response := map[string][]ClothingResponse{}
	for _, category := range models.ValidCategories() {
		response[category] = []ClothingResponse{}
	}
	for _, resp := range processedResponses {
		response[resp.Category] = append(response[resp.Category], resp)
	}

	return c.JSON(http.StatusOK, response)
}

type QueueStatusResponse struct {
	Pending int `json:"pending"`
	Active  int `json:"active"`
	Retry   int `json:"retry"`
}

// QueueStatus reports the backlog of the classify queue so the client can show
// a "still processing" hint.
func (controller *ClothesController) QueueStatus(c echo.Context) error {
	inspector, ok := c.Get("__asynqinspector").(*asynq.Inspector)
	if !ok || inspector == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "Queue status is not available right now"})
	}
	info, err := inspector.GetQueueInfo("classify")
	if err != nil {
		// The queue does not exist until the first classify task is enqueued.
		return c.JSON(http.StatusOK, QueueStatusResponse{})
	}
	return c.JSON(http.StatusOK, QueueStatusResponse{Pending: info.Pending, Active: info.Active, Retry: info.Retry})
}

func (controller *ClothesController) fetchOwnedItem(c echo.Context, db *gorm.DB, user models.UserAccount) (*models.ClothingItem, error) {
	var clothingId uint
	if err := echo.PathParamsBinder(c).Uint("clothingId", &clothingId).BindError(); err != nil {
		return nil, echo.ErrBadRequest
	}
	var item models.ClothingItem
	r := db.Limit(1).Find(&item, "id = ? AND owner_id = ?", clothingId, user.ID)
	if r.Error != nil {
		return nil, echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return nil, echo.ErrNotFound
	}
	return &item, nil
}

func (controller *ClothesController) UpdateClothing(c echo.Context) error {
	var req UpdateClothingIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	item, err := controller.fetchOwnedItem(c, db, user)
	if err != nil {
		return err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Subcategory != nil {
		item.Subcategory = req.Subcategory
	}
	if req.Color != nil {
		item.Color = *req.Color
	}
	if req.Seasons != nil {
		item.Seasons = req.Seasons
	}
	if req.Occasions != nil {
		item.Occasions = req.Occasions
	}
	if req.Tags != nil {
		item.Tags = req.Tags
	}
	if req.Brand != nil {
		item.Brand = req.Brand
	}
	if req.Size != nil {
		item.Size = req.Size
	}
	if req.Price != nil {
		item.Price = req.Price
	}
	if req.Favorite != nil {
		item.Favorite = *req.Favorite
	}

	if err := db.Save(item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update the item, please try again"})
	}
	return c.JSON(http.StatusOK, clothingToResponse(*item, nil))
}

func (controller *ClothesController) DeleteClothing(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	item, err := controller.fetchOwnedItem(c, db, user)
	if err != nil {
		return err
	}
	if err := db.Delete(item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete the item, please try again"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted"})
}

// WearClothing bumps the usage counters; these feed variety scoring and the
// closet statistics on the client.
func (controller *ClothesController) WearClothing(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	item, err := controller.fetchOwnedItem(c, db, user)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	item.WearCount = item.WearCount + 1
	item.LastWornAt = &now
	if err := db.Save(item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to record the wear, please try again"})
	}
	return c.JSON(http.StatusOK, clothingToResponse(*item, nil))
}
