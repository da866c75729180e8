package config

import "time"

const (
	// Points
	ComplaintPoints = 50

	// Routing
	InstitutionCacheTTL = 5 * time.Minute
	NotFoundAgency      = "Not Found"

	// Transcription
	TranscriptionTimeout      = 3 * time.Minute
	TranscriptionPollInterval = 3 * time.Second

	// Categorization fallback
	KeywordHitsForFullConfidence = 3
	KeywordMaxConfidence         = 98
	KeywordDefaultConfidence     = 70

	// Insights
	InsightWindow       = 14 * 24 * time.Hour
	InsightMinCount     = 3
	InsightMaxEvidence  = 5
	InsightTimeframe    = "next 30 days"
	InsightMaxProbScore = 95

	// Media uploads
	MaxMediaBytes      = 50 << 20
	MediaUploadTimeout = 2 * time.Minute

	// HTTP server. A media request reads the body, uploads it and waits for
	// the transcript before it can answer.
	ServerReadTimeout  = MediaUploadTimeout
	ServerWriteTimeout = ServerReadTimeout + MediaUploadTimeout + TranscriptionTimeout + 30*time.Second
)

// RewardOption is one redeemable item of the Igire points catalog.
type RewardOption struct {
	Code          string `json:"code"`
	Type          string `json:"type"`
	AmountRWF     int    `json:"amountRwf"`
	CoinsRequired int    `json:"coinsRequired"`
}

// RewardCatalog lists the options in USSD menu order.
var RewardCatalog = []RewardOption{
	{Code: "airtime-500", Type: "airtime", AmountRWF: 500, CoinsRequired: 100},
	{Code: "data-1000", Type: "data", AmountRWF: 1000, CoinsRequired: 200},
	{Code: "electricity-2000", Type: "electricity", AmountRWF: 2000, CoinsRequired: 400},
}
