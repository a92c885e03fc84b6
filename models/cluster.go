package models

type SizeTier string

const (
	SizeSmall      SizeTier = "small"
	SizeMedium     SizeTier = "medium"
	SizeLarge      SizeTier = "large"
	SizeExtraLarge SizeTier = "extra-large"
)

// ScreenPoint is a position relative to the rendered map, both axes in 0..1.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cluster is a heat-map bucket. It is derived per request and never stored.
type Cluster struct {
	Position         Point        `json:"position"`
	ScreenPosition   *ScreenPoint `json:"screen_position,omitempty"`
	MemberCount      int          `json:"member_count"`
	SizeTier         SizeTier     `json:"size_tier"`
	DominantSeverity Severity     `json:"dominant_severity"`
	Color            string       `json:"color"`
	Placeholder      bool         `json:"placeholder"`
}

// MapPin is a public map marker: either a single report or an aggregate.
type MapPin struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Count     int64    `json:"count"`
	Seq       int64    `json:"seq"`      // Ignored if Count > 1
	Severity  Severity `json:"severity"` // Ignored if Count > 1
	Own       bool     `json:"own"`
}
