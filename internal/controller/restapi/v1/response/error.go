package response

type Error struct {
	Error string `json:"error" example:"message"`
	Stage string `json:"stage,omitempty" example:"detected"`
}
