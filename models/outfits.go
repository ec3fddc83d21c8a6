package models

import "github.com/lib/pq"

type SavedOutfit struct {
	JsonModel
	Name    string      `json:"name"`
	Owner   UserAccount `json:"-"`
	OwnerID uint        `json:"-"`

	ItemIDs pq.Int64Array `gorm:"type:bigint[]" json:"item_ids"`

	// machine_generated, user_assembled
	Source string `json:"source"`

	TotalScore float64 `json:"total_score"`
	// full per-dimension breakdown; see outfit.MarshalScore
	ScoreJSON string `gorm:"type:text" json:"score_json"`
	// legacy "Score: NN%" display string kept for older clients
	Notes string `json:"notes"`

	Season   *string `json:"season"`
	Occasion *string `json:"occasion"`

	WornCount int  `gorm:"default:0" json:"worn_count"`
	Favorite  bool `gorm:"default:false" json:"favorite"`
}

// ItemIDStrings converts the stored ids into the engine's history form.
func (o *SavedOutfit) ItemIDStrings() []string {
	ids := make([]string, len(o.ItemIDs))
	for i, id := range o.ItemIDs {
		ids[i] = UIntToStr(uint(id))
	}
	return ids
}
