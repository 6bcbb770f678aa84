package dto

// Request trigger manual satu job scheduler (atau "all")
type RunSchedulerRequest struct {
	Job string `json:"job" validate:"required,oneof=release expiry_daily expiry_fixed performance auto_launch all"`
}
