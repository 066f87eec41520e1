package request

type Moderate struct {
	Key string `json:"key" example:"uploads/photo.jpg"`
}
