// Package models defines the domain types for Depot.
package models

// FileDescriptor is one manifest entry.
type FileDescriptor struct {
	Name string   `json:"name"`
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// ProbeResult is the outcome of a metadata probe against a file URL.
type ProbeResult struct {
	Exists bool    `json:"exists"`
	Size   float64 `json:"size"`
}

// Missing is the result used whenever a probe cannot confirm a file.
var Missing = ProbeResult{}
