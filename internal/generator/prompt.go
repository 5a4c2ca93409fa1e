package generator

import (
	"fmt"

	"github.com/kimhsiao/blogai/internal/models"
)

const systemPrompt = "You are a helpful AI assistant that writes high-quality articles in Portuguese. " +
	"Always write in plain text without markdown formatting."

const userPromptFormat = "Write a %s article about \"%s\" in Portuguese. \n" +
	"Make it informative and well-structured with at least 300 words.\n" +
	"Write in plain text without any markdown formatting (no **, no *, no #)."

// BuildPrompt renders the chat messages for a generation request.
func BuildPrompt(req models.GenerationRequest) Prompt {
	req = req.WithDefaults()
	return Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(userPromptFormat, req.Style, req.Topic),
	}
}
