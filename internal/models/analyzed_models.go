package models

import "time"

// RawObservation is the unstructured text returned by the vision model.
type RawObservation struct {
	Text string `json:"text"`
}

// EngagementCounts holds the counters read off a post screenshot.
// A counter that could not be detected is zero.
type EngagementCounts struct {
	Likes       int64 `json:"likes"`
	Impressions int64 `json:"impressions"`
}

type AnalysisResult struct {
	Likes       int64     `json:"likes" dynamodbav:"likes"`
	Impressions int64     `json:"impressions" dynamodbav:"impressions"`
	KyokanRate  float64   `json:"kyokan_rate" dynamodbav:"kyokan_rate"`
	Comment     string    `json:"comment" dynamodbav:"comment"`
	Tier        string    `json:"tier" dynamodbav:"tier"`
	Category    Category  `json:"category,omitempty" dynamodbav:"category,omitempty"`
	Advisories  []string  `json:"advisories,omitempty" dynamodbav:"advisories,omitempty"`
	AIComment   string    `json:"ai_comment" dynamodbav:"ai_comment"`
	RawText     string    `json:"raw_text,omitempty" dynamodbav:"raw_text,omitempty"`
	ResultID    string    `json:"result_id,omitempty" dynamodbav:"result_id"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
}
