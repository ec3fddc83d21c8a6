package models

import "time"

type UserAccount struct {
	JsonModel
	Name     string   `json:"name"`
	Email    string   `json:"email" gorm:"unique"`
	Banned   bool     `gorm:"default:false" json:"-"`
	LastIp   string   `json:"-"`
	Status   string   `json:"-"`
	Platform Platform `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`

	Subscription   Subscription `json:"subscription"`
	ExpirationDate *time.Time   `json:"-"`

	// Notifications settings
	ReceiveNotifications bool   `json:"receive_notifications"`
	AvatarURL            string `json:"avatar_url"`

	// Style preference vector, each axis in [0,1]. Feeds the optional
	// userPreference scoring dimension.
	PrefFormality    *float64 `json:"pref_formality"`
	PrefBoldness     *float64 `json:"pref_boldness"`
	PrefLayering     *float64 `json:"pref_layering"`
	PrefColorfulness *float64 `json:"pref_colorfulness"`

	// Opt-in for the scheduled daily outfit suggestion push.
	DailySuggestionEnabled bool `json:"daily_suggestion_enabled"`

	// Free plan cap override; nil uses the plan default.
	EnforcedItemLimit *int32 `json:"-"`
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type UserMeOut struct {
	Id                     string         `json:"id"`
	Name                   string         `json:"name"`
	Email                  string         `json:"email"`
	AvatarURL              string         `json:"avatar_url"`
	Subscription           Subscription   `json:"subscription"`
	ReceiveNotifications   bool           `json:"receive_notifications"`
	DailySuggestionEnabled bool           `json:"daily_suggestion_enabled"`
	Preferences            *PreferencesIn `json:"preferences"`
}

type PreferencesIn struct {
	Formality    *float64 `json:"formality" validate:"omitempty,gte=0,lte=1"`
	Boldness     *float64 `json:"boldness" validate:"omitempty,gte=0,lte=1"`
	Layering     *float64 `json:"layering" validate:"omitempty,gte=0,lte=1"`
	Colorfulness *float64 `json:"colorfulness" validate:"omitempty,gte=0,lte=1"`
}
