package journal

import "math/rand/v2"

// Float64Source yields uniform values in [0, 1).
type Float64Source interface {
	Float64() float64
}

type globalFloats struct{}

func (globalFloats) Float64() float64 { return rand.Float64() }

// Coordinates bounds: X and Y span [-10, 10), Z spans [-5, 5),
// brightness spans [0.7, 1.0).
const (
	spreadXY      = 20
	spreadZ       = 10
	minBrightness = 0.7
	rangeBright   = 0.3
)

// PlaceStars positions one star per emotion of a new memory. A nil src uses
// the global generator. IDs and timestamps are left to the caller.
func PlaceStars(src Float64Source, userID, memoryID string, emotionIDs []string) []Star {
	if src == nil {
		src = globalFloats{}
	}
	stars := make([]Star, 0, len(emotionIDs))
	for _, eid := range emotionIDs {
		emotionID := eid
		mid := memoryID
		stars = append(stars, Star{
			UserID:     userID,
			EmotionID:  &emotionID,
			MemoryID:   &mid,
			X:          (src.Float64() - 0.5) * spreadXY,
			Y:          (src.Float64() - 0.5) * spreadXY,
			Z:          (src.Float64() - 0.5) * spreadZ,
			Brightness: minBrightness + src.Float64()*rangeBright,
		})
	}
	return stars
}
