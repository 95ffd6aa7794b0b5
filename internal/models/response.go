package models

// Part is one piece of content; only text parts are used
type Part struct {
	Text string `json:"text"`
}

// Content groups the parts of a single message
type Content struct {
	Parts []Part `json:"parts"`
}

// GenerateRequest is the JSON body of a generateContent call.
// Only the latest user utterance is sent; no history is included.
type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

// NewGenerateRequest builds a single-turn request for prompt
func NewGenerateRequest(prompt string) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
	}
}

// GenerateOutput is the parsed result of a successful generateContent call
type GenerateOutput struct {
	Text         string // candidates[0].content.parts[0].text
	Model        string
	FinishReason string // candidates[0].finishReason, when present
	Candidates   int    // number of candidates returned
}
