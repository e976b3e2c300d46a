package models

// CurrentConditions represents the weather at the time of the fetch
type CurrentConditions struct {
	TemperatureC  float64 `json:"temperatureC"`
	WindKph       float64 `json:"windKph"`
	ConditionCode int     `json:"conditionCode"` // WMO weather interpretation code
}

// Condition is the display form of a WMO weather code
type Condition struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var fallbackCondition = Condition{Label: "Clima", Icon: "🌡️"}

var conditions = map[int]Condition{
	0:  {Label: "Céu limpo", Icon: "☀️"},
	1:  {Label: "Poucas nuvens", Icon: "🌤️"},
	2:  {Label: "Poucas nuvens", Icon: "🌤️"},
	3:  {Label: "Nublado", Icon: "☁️"},
	45: {Label: "Neblina", Icon: "🌫️"},
	48: {Label: "Neblina", Icon: "🌫️"},
	51: {Label: "Garoa", Icon: "🌦️"},
	53: {Label: "Garoa", Icon: "🌦️"},
	55: {Label: "Garoa", Icon: "🌦️"},
	56: {Label: "Garoa", Icon: "🌦️"},
	57: {Label: "Garoa", Icon: "🌦️"},
	61: {Label: "Chuva", Icon: "🌧️"},
	63: {Label: "Chuva", Icon: "🌧️"},
	65: {Label: "Chuva", Icon: "🌧️"},
	66: {Label: "Chuva", Icon: "🌧️"},
	67: {Label: "Chuva", Icon: "🌧️"},
	71: {Label: "Neve", Icon: "🌨️"},
	73: {Label: "Neve", Icon: "🌨️"},
	75: {Label: "Neve", Icon: "🌨️"},
	77: {Label: "Neve", Icon: "🌨️"},
	80: {Label: "Pancadas", Icon: "🌧️"},
	81: {Label: "Pancadas", Icon: "🌧️"},
	82: {Label: "Pancadas", Icon: "🌧️"},
	95: {Label: "Tempestade", Icon: "⛈️"},
	96: {Label: "Tempestade", Icon: "⛈️"},
	99: {Label: "Tempestade", Icon: "⛈️"},
}

// ConditionFor maps a WMO code to its label and icon
func ConditionFor(code int) Condition {
	if c, ok := conditions[code]; ok {
		return c
	}
	return fallbackCondition
}

// Condition returns the display form of the current condition code
func (c CurrentConditions) Condition() Condition {
	return ConditionFor(c.ConditionCode)
}
