package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"stylistoapi/models"
	"stylistoapi/outfit"
	"stylistoapi/services"
)

const (
	TypeClassifyClothing = "classify:clothing"
	TypeDailySuggestion  = "suggest:daily"
)

type ClothingClassifyPayload struct {
	ClothingID uint `json:"clothing_id"`
}

func NewClothingClassifyTask(clothingID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ClothingClassifyPayload{ClothingID: clothingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeClassifyClothing, payload), nil
}

func NewDailySuggestionTask() *asynq.Task {
	return asynq.NewTask(TypeDailySuggestion, []byte{})
}

func getItemPhoto(awsService services.AWSServiceProvider, item models.ClothingItem) ([]byte, error) {
	bucketName := os.Getenv("R2_BUCKET_NAME")
	if item.ImageURL == nil || *item.ImageURL == "" {
		return nil, fmt.Errorf("[Clothing: %v] no photo key on record", item.ID)
	}
	fmt.Printf("[Clothing: %v] Request presigned download url..\n", item.ID)
	url, err := awsService.GetPresignedR2FileReadURL(context.Background(), bucketName, *item.ImageURL)
	if err != nil {
		return nil, err
	}
	return services.ReadFileFromUrl(url)
}

// HandleClothingClassifyTask downloads the item photo, preps it and asks the
// vision model for wardrobe attributes. Attribute fields the user already
// edited by hand are not overwritten.
func HandleClothingClassifyTask(ctx context.Context, t *asynq.Task, db *gorm.DB, vision services.VisionProvider,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	googleKey := os.Getenv("GOOGLE_API_KEY")
	if googleKey == "" {
		sentry.CaptureException(fmt.Errorf("[Queue] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[Queue] %s Google API key is not set", string(t.Payload()))
	}
	var payload ClothingClassifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Clothing: %v] Start classification\n", payload.ClothingID)

	var item models.ClothingItem
	res := db.First(&item, payload.ClothingID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Queue] Error on retrieving clothing item for classification %v", payload.ClothingID))
		return res.Error
	}

	item.ProcessingStatus = "classifying"
	db.Save(&item)

	photoBytes, err := getItemPhoto(awsService, item)
	if err != nil {
		saveClassificationFail(db, item, "Failed to read the item photo, please re-upload it", false)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on getting photo: %v", payload.ClothingID, err))
		return err
	}
	fmt.Printf("[Clothing: %v] Downloaded photo size: %d bytes\n", payload.ClothingID, len(photoBytes))

	prepOk := true
	prepared, err := services.PrepareItemPhoto(photoBytes)
	if err != nil {
		// Prep is an optimization; classify the raw photo when it fails.
		fmt.Printf("[Clothing: %v] Photo prep failed, using original: %v\n", payload.ClothingID, err)
		prepared = photoBytes
		prepOk = false
	}
	photoPath, err := services.CreateTempFile(prepared, fmt.Sprintf("clothing-%d.png", item.ID))
	if err != nil {
		saveClassificationFail(db, item, "Failed to process the item photo, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on creating temp file: %v", payload.ClothingID, err))
		return err
	}
	defer os.Remove(photoPath)

	result, err := vision.ClassifyClothing(ctx, photoPath, services.Flash25)
	if err != nil {
		saveClassificationFail(db, item, "Sorry, we could not recognize this item, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on vision classification: %v", payload.ClothingID, err))
		return err
	}

	if prepOk {
		processedKey, uploadErr := uploadProcessedPhoto(awsService, item, prepared)
		if uploadErr != nil {
			// The original photo still renders; keep going.
			fmt.Printf("[Clothing: %v] Processed photo upload failed: %v\n", item.ID, uploadErr)
			sentry.CaptureException(uploadErr)
		} else {
			item.ProcessedImageURL = &processedKey
		}
	}

	applyAttributes(&item, result.Attributes)
	item.LLMModel = &result.LLMModel
	item.LLMInputTokenCount = &result.InputTokenCount
	item.LLMOutputTokenCount = &result.OutputTokenCount
	item.LLMTotalTokenCount = &result.TotalTokenCount
	item.ProcessingStatus = "completed"
	item.ProcessErrorMessage = nil
	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error saving classified item: %v", payload.ClothingID, err))
		return err
	}
	fmt.Printf("[Clothing: %v] Classified as %s / %s (%s)\n", item.ID, item.Category, result.Attributes.Subcategory, item.Color)

	if item.AlertWhenProcessed {
		services.SendNotification(fbApp, db, item.OwnerID, "Item ready",
			fmt.Sprintf("%s is classified and in your closet", displayName(item)),
			map[string]string{"clothing_id": fmt.Sprintf("%d", item.ID), "type": "clothing_processed"})
	}
	return nil
}

// uploadProcessedPhoto stores the whitened copy next to the original so the
// closet grid can render the cleaned image.
func uploadProcessedPhoto(awsService services.AWSServiceProvider, item models.ClothingItem, photo []byte) (string, error) {
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	processedKey := fmt.Sprintf("clothes/processed-%d.png", item.ID)
	uploadUrl, err := awsService.PresignLink(context.Background(), bucketName, processedKey)
	if err != nil {
		return "", err
	}
	respBody, statusCode, err := awsService.UploadToPresignedURL(context.Background(), bucketName, uploadUrl, photo)
	fmt.Printf("[Clothing: %v] R2 upload of processed photo, size %v, response body: %s, status code: %d\n", item.ID, len(photo), respBody, statusCode)
	if err != nil {
		return "", err
	}
	if statusCode != 200 {
		return "", fmt.Errorf("processed photo upload returned status %d", statusCode)
	}
	return processedKey, nil
}

// applyAttributes fills only the fields the user left empty, and drops values
// falling outside the fixed taxonomy.
func applyAttributes(item *models.ClothingItem, attrs services.ClothingAttributes) {
	if item.Name == "" && attrs.Name != "" {
		item.Name = attrs.Name
	}
	if item.Category == "" && outfit.ValidCategory(attrs.Category) {
		item.Category = attrs.Category
	}
	if item.Subcategory == nil && attrs.Subcategory != "" {
		item.Subcategory = services.StrPointer(attrs.Subcategory)
	}
	if item.Color == "" && attrs.Color != "" {
		item.Color = attrs.Color
	}
	if len(item.Seasons) == 0 && models.ValidSeasons(attrs.Seasons) {
		item.Seasons = attrs.Seasons
	}
	if len(item.Occasions) == 0 && models.ValidOccasions(attrs.Occasions) {
		item.Occasions = attrs.Occasions
	}
	if len(item.Tags) == 0 {
		item.Tags = attrs.Tags
	}
}

func displayName(item models.ClothingItem) string {
	if item.Name != "" {
		return item.Name
	}
	return fmt.Sprintf("Your %s", item.Category)
}

func saveClassificationFail(db *gorm.DB, item models.ClothingItem, msg string, shouldRetry bool) {
	item.ProcessRetryTimes = item.ProcessRetryTimes + 1
	item.ProcessErrorMessage = &msg
	if !shouldRetry || item.ProcessRetryTimes >= 3 {
		item.ProcessingStatus = "failed"
	} else {
		item.ProcessingStatus = "pending"
	}
	tx := db.Omit("alert_when_processed").Save(&item)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Clothing %v] Error on saving item failed status", item.ID))
	}
}

// HandleDailySuggestionTask pushes an outfit of the day to every opted-in
// user. One user failing never blocks the rest.
func HandleDailySuggestionTask(ctx context.Context, t *asynq.Task, db *gorm.DB, fbApp *firebase.App) error {
	fmt.Printf("[Daily Suggestion] Processing for all users\n")

	var users []models.UserAccount
	result := db.Where("banned = ? AND daily_suggestion_enabled = ?", false, true).Find(&users)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Daily Suggestion] Error fetching users: %v", result.Error))
		return result.Error
	}
	fmt.Printf("[Daily Suggestion] Found %d opted-in users\n", len(users))

	for _, user := range users {
		if err := suggestOutfitToUser(ctx, db, fbApp, user); err != nil {
			fmt.Printf("[Daily Suggestion] Failed for user %d: %v\n", user.ID, err)
			sentry.CaptureException(fmt.Errorf("[Daily Suggestion] Failed for user %d: %v", user.ID, err))
			continue
		}
		time.Sleep(1 * time.Second) // To avoid hitting push rate limits
	}
	return nil
}

func suggestOutfitToUser(ctx context.Context, db *gorm.DB, fbApp *firebase.App, user models.UserAccount) error {
	var wardrobe []models.ClothingItem
	if err := db.Where("owner_id = ?", user.ID).Find(&wardrobe).Error; err != nil {
		return fmt.Errorf("error fetching wardrobe: %v", err)
	}

	var recent []models.SavedOutfit
	db.Where("owner_id = ?", user.ID).Order("created_at desc").Limit(10).Find(&recent)
	history := make([][]string, 0, len(recent))
	for i := range recent {
		history = append(history, recent[i].ItemIDStrings())
	}

	engineCtx := &outfit.Context{Season: CurrentSeason(time.Now()), History: history}
	generated, err := outfit.Generate(models.EngineItems(wardrobe), 1, engineCtx, nil, nil)
	if err != nil {
		// Too few items is fine, the user just gets no suggestion today.
		fmt.Printf("[Daily Suggestion] User %d has insufficient wardrobe\n", user.ID)
		return nil
	}
	if len(generated.Candidates) == 0 {
		fmt.Printf("[Daily Suggestion] No complete outfit for user %d\n", user.ID)
		return nil
	}

	pick := generated.Candidates[0]
	title := "Outfit of the day"
	message := fmt.Sprintf("We picked %d pieces for you today (%s)", len(pick.Items), outfit.FormatScoreNotes(pick.Score))
	fmt.Println("[Daily Suggestion] Sending suggestion to user", user.ID)
	services.SendNotification(fbApp, db, user.ID, title, message, map[string]string{"type": "daily_suggestion"})
	return nil
}

// CurrentSeason maps the calendar month to the wardrobe season taxonomy
// (northern hemisphere).
func CurrentSeason(now time.Time) string {
	switch now.Month() {
	case time.March, time.April, time.May:
		return outfit.SeasonSpring
	case time.June, time.July, time.August:
		return outfit.SeasonSummer
	case time.September, time.October, time.November:
		return outfit.SeasonFall
	default:
		return outfit.SeasonWinter
	}
}
