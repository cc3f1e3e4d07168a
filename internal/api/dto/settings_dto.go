package dto

// SettingResponse is a single key-value entry.
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UpdateSettingRequest payload.
type UpdateSettingRequest struct {
	Value string `json:"value"`
}
