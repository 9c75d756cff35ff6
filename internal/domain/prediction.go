package domain

// PredictionRequest represents the environmental inputs for a surge prediction.
// Fields are pointers so a missing value can be told apart from a zero.
type PredictionRequest struct {
	Date       string   `json:"date" validate:"required"`
	AQI        *float64 `json:"aqi" validate:"required"`
	Temp       *float64 `json:"temp" validate:"required"`
	Humidity   *float64 `json:"humidity" validate:"required"`
	IsFestival *int     `json:"is_festival" validate:"required"`
}

// Conditions returns the request as plain values. Call only after validation.
func (r PredictionRequest) Conditions() Conditions {
	c := Conditions{Date: r.Date}
	if r.AQI != nil {
		c.AQI = *r.AQI
	}
	if r.Temp != nil {
		c.Temp = *r.Temp
	}
	if r.Humidity != nil {
		c.Humidity = *r.Humidity
	}
	if r.IsFestival != nil {
		c.Festival = *r.IsFestival != 0
	}
	return c
}

// Conditions is the validated input to a Scorer.
type Conditions struct {
	Date     string
	AQI      float64
	Temp     float64 // °C
	Humidity float64
	Festival bool
}

// PredictionResult represents the surge prediction output
type PredictionResult struct {
	PredictedPatients     int      `json:"predicted_patients"`
	PredictedBedOccupancy float64  `json:"predicted_bed_occupancy"`
	Reasoning             []string `json:"reasoning"`
	Actions               []string `json:"actions"`
	Model                 string   `json:"model"`
}

// BedCapacity is the hospital capacity used to derive bed occupancy.
const BedCapacity = 1200
