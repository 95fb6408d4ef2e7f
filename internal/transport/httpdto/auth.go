package httpdto

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type WSTicketResponse struct {
	Ticket string `json:"ticket"`
}

type ProfileResponse struct {
	Username        string `json:"username"`
	VotedPollsCount int64  `json:"votedPollsCount"`
}
