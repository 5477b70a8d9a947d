package advisor

const (
	defaultLocationType = "home"
	defaultAreaCode     = "110"
	areaCodeDigits      = 3

	// The service was trained with these values when the caller knows neither.
	defaultDistanceKm = 5.0
	defaultOrderValue = 500.0
)

// recipientFeatures describes the delivery as the prediction service sees it.
type recipientFeatures struct {
	RecipientID  string   `json:"recipient_id"`
	DayOfWeek    int      `json:"day_of_week"`
	LocationType string   `json:"location_type"`
	AreaCode     string   `json:"area_code"`
	Distance     float64  `json:"distance"`
	OrderValue   float64  `json:"order_value"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// predictRequest is the body of POST /predict-timeslot. The features sit at
// the top level.
type predictRequest struct {
	recipientFeatures
}

// predictResponse carries confidences in percent keyed by "<startHour>-<endHour>".
type predictResponse struct {
	RecipientID string          `json:"recipient_id"`
	Predictions []predictedSlot `json:"predictions"`
}

type predictedSlot struct {
	TimeSlot    string  `json:"time_slot"`
	Confidence  float64 `json:"confidence"`
	Rank        int     `json:"rank"`
	Explanation string  `json:"explanation"`
}

// learnRequest is the body of POST /learn. Both fields are required by the
// service.
type learnRequest struct {
	RecipientData recipientFeatures `json:"recipient_data"`
	SelectedSlot  string            `json:"selected_slot"`
}
