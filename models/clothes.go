package models

import (
	"time"

	"github.com/lib/pq"

	"stylistoapi/outfit"
)

type ClothingItem struct {
	JsonModel
	Name        string  `json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	// tops, bottoms, dresses, outerwear, shoes, accessories, underwear,
	// activewear, sleepwear, swimwear
	Category    string  `json:"category"`
	Subcategory *string `json:"subcategory"`
	// hex string or common color name
	Color     string         `json:"color"`
	Seasons   pq.StringArray `gorm:"type:text[]" json:"seasons"`
	Occasions pq.StringArray `gorm:"type:text[]" json:"occasions"`
	Tags      pq.StringArray `gorm:"type:text[]" json:"tags"`

	Brand    *string  `json:"brand"`
	Size     *string  `json:"size"`
	Price    *float64 `json:"price"`
	Favorite bool     `gorm:"default:false" json:"favorite"`

	// usage history, bumped only by the wear endpoint
	WearCount  int        `gorm:"default:0" json:"wear_count"`
	LastWornAt *time.Time `json:"last_worn_at"`

	Owner   UserAccount `json:"-"`
	OwnerID uint        `json:"-"`

	// photo key in object storage
	ImageURL    *string `json:"image_url"`
	ImageStatus string  `json:"image_status"` // draft, uploaded
	// whitened copy produced by the classify pipeline, preferred for rendering
	ProcessedImageURL *string `json:"processed_image_url"`
	// idle, pending, classifying, completed, failed
	ProcessingStatus    string  `json:"processing_status"`
	ProcessRetryTimes   int     `json:"process_retry_times"`
	ProcessErrorMessage *string `json:"process_error_message"`
	AlertWhenProcessed  bool    `json:"alert_when_processed"`

	LLMModel            *string `json:"llm_model"`
	LLMInputTokenCount  *int32  `json:"llm_input_token_count"`
	LLMOutputTokenCount *int32  `json:"llm_output_token_count"`
	LLMTotalTokenCount  *int32  `json:"llm_total_token_count"`
}

// EngineItem maps the stored row into the scoring engine's read-only form.
func (c *ClothingItem) EngineItem() outfit.Item {
	item := outfit.Item{
		ID:        UIntToStr(c.ID),
		Category:  outfit.Category(c.Category),
		Color:     c.Color,
		Seasons:   c.Seasons,
		Occasions: c.Occasions,
		Tags:      c.Tags,
		Favorite:  c.Favorite,
		WearCount: c.WearCount,
		Price:     c.Price,
	}
	if c.Subcategory != nil {
		item.Subcategory = *c.Subcategory
	}
	if c.Brand != nil {
		item.Brand = *c.Brand
	}
	if c.Size != nil {
		item.Size = *c.Size
	}
	if c.LastWornAt != nil {
		t := *c.LastWornAt
		item.LastWornAt = &t
	}
	return item
}

func EngineItems(rows []ClothingItem) []outfit.Item {
	items := make([]outfit.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].EngineItem()
	}
	return items
}
