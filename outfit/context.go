package outfit

// WeatherSnapshot is a caller-supplied weather reading. Temperatures are
// Celsius.
type WeatherSnapshot struct {
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Condition string  `json:"condition"` // clear, clouds, rain, snow, wind
}

// PreferenceVector is the user's stated style preference, each axis in [0,1].
type PreferenceVector struct {
	Formality    float64 `json:"formality"`
	Boldness     float64 `json:"boldness"`
	Layering     float64 `json:"layering"`
	Colorfulness float64 `json:"colorfulness"`
}

// Context carries the optional inputs that enable extra scoring dimensions.
// A nil field disables the corresponding dimension; it is then absent from the
// score breakdown rather than reported as zero.
type Context struct {
	Season   string
	Occasion string
	Weather  *WeatherSnapshot
	Prefs    *PreferenceVector
	// Recent item-id combinations (generated or worn) for variety scoring.
	// Storage of this history is the caller's concern.
	History [][]string
}
