package attendance

type ClockInDTO struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

type ClockOutDTO struct {
	Project string `json:"project"`
	Task    string `json:"task"`
}
