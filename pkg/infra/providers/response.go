package providers

// CompletionResponse is a provider's answer to one vision prompt. Response
// holds the model's free text exactly as returned.
type CompletionResponse struct {
	ID       string `json:"id"`
	Model    string `json:"model"`
	Response string `json:"response"`
	Usage    Usage  `json:"usage"`
}

// Usage is token accounting as reported by the provider. Providers that only
// report input and output counts get TotalTokens filled by Complete.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u Usage) Complete() Usage {
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return u
}
