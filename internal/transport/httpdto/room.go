package httpdto

type UpdateRoomRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
