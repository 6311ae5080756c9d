package registry

// ApiItem is one badge as published by the upstream registry.
type ApiItem struct {
	Key         string  `json:"key"`
	PlateNumber string  `json:"plateNumber"`
	BadgeNumber string  `json:"badgeNumber"`
	ExpiresAt   *string `json:"expiresAt"`
}

// ApiResponse models the top-level structure of the upstream API's response.
type ApiResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int       `json:"page"`
		PageSize int       `json:"pageSize"`
		Total    int       `json:"total"`
		Items    []ApiItem `json:"items"`
	} `json:"data"`
}
