package httpdto

type CreatePollRequest struct {
	Question string   `json:"question" binding:"required"`
	Options  []string `json:"options" binding:"required"`
}

type VoteRequest struct {
	SelectedOption string `json:"selectedOption" binding:"required"`
}

type OptionDTO struct {
	Answer string `json:"answer"`
	Votes  int    `json:"votes"`
}

type PollDTO struct {
	ID        string      `json:"id"`
	Question  string      `json:"question"`
	Options   []OptionDTO `json:"options"`
	CreatedBy string      `json:"createdBy"`
	VoterIDs  []string    `json:"voters,omitempty"`
}

type PollCountResponse struct {
	Count int64 `json:"count"`
}
