// Package models contains data types and constants for the Gemini generative-language API.
package models

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoints for the generative-language API
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	APIVersion     = "v1beta"
)

// Model names a generation model exposed by the API
type Model struct {
	Name  string // short alias used in config and flags
	APIID string // identifier used in the endpoint path
}

// Available models
var (
	ModelFlash = Model{
		Name:  "flash",
		APIID: "gemini-2.0-flash",
	}

	ModelFlashLite = Model{
		Name:  "flash-lite",
		APIID: "gemini-2.0-flash-lite",
	}

	ModelPro = Model{
		Name:  "pro",
		APIID: "gemini-2.5-pro",
	}

	// DefaultModel is the model the chat uses when nothing is configured
	DefaultModel = ModelFlash
)

// AllModels returns a list of all known models
func AllModels() []Model {
	return []Model{ModelFlash, ModelFlashLite, ModelPro}
}

// ModelFromName resolves an alias or a raw API model id.
// Unknown names are passed through so new models work without a release.
func ModelFromName(name string) Model {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultModel
	}
	for _, m := range AllModels() {
		if m.Name == name || m.APIID == name {
			return m
		}
	}
	id := strings.TrimPrefix(name, "models/")
	return Model{Name: id, APIID: id}
}

// GenerateEndpoint returns the generateContent URL for a model, without the API key
func GenerateEndpoint(baseURL string, model Model) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return fmt.Sprintf("%s/%s/models/%s:generateContent",
		strings.TrimRight(baseURL, "/"), APIVersion, url.PathEscape(model.APIID))
}

// DefaultHeaders returns the headers sent with every generate request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}
