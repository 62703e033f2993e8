package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/phrazzld/palace-api/internal/task"
)

// contentPreviewLength is the number of characters of the content quoted in
// the visualization suggestion.
const contentPreviewLength = 50

// Suggestion is one memory technique proposed for a piece of content.
type Suggestion struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// SuggestionsResult is the result of GenerateMemorySuggestions.
type SuggestionsResult struct {
	UserID      json.RawMessage `json:"user_id"`
	PalaceID    json.RawMessage `json:"palace_id"`
	Suggestions []Suggestion    `json:"suggestions"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// RecommendedChange is a concrete layout change for one room.
type RecommendedChange struct {
	RoomID     int    `json:"room_id"`
	Suggestion string `json:"suggestion"`
	Impact     string `json:"impact"`
}

// Optimizations is the layout analysis of a palace.
type Optimizations struct {
	LayoutScore        float64             `json:"layout_score"`
	Suggestions        []string            `json:"suggestions"`
	RecommendedChanges []RecommendedChange `json:"recommended_changes"`
}

// LayoutResult is the result of OptimizePalaceLayout.
type LayoutResult struct {
	PalaceID      json.RawMessage `json:"palace_id"`
	Optimizations Optimizations   `json:"optimizations"`
	AnalyzedAt    time.Time       `json:"analyzed_at"`
}

// GenerateMemorySuggestions proposes three memory techniques for content.
// Args: user_id, palace_id, content.
func (h *Handlers) GenerateMemorySuggestions(ctx context.Context, args task.Args, progress task.Reporter) (any, error) {
	var userID, palaceID json.RawMessage
	var content string
	if err := args.Bind(&userID, &palaceID, &content); err != nil {
		return nil, err
	}

	if err := progress.Report(ctx, 0, 100, "Analyzing content..."); err != nil {
		return nil, err
	}
	if err := h.sleep(ctx, h.delays.Analyze); err != nil {
		return nil, err
	}

	if err := progress.Report(ctx, 50, 100, "Generating suggestions..."); err != nil {
		return nil, err
	}
	if err := h.sleep(ctx, h.delays.Generate); err != nil {
		return nil, err
	}

	suggestions := []Suggestion{
		{
			Type:        "visualization",
			Title:       "Visual Memory Aid",
			Description: "Create a vivid mental image related to: " + preview(content) + "...",
			Confidence:  h.uniform(0.7, 0.95),
		},
		{
			Type:        "association",
			Title:       "Memory Association",
			Description: "Link this concept to something you already know well",
			Confidence:  h.uniform(0.6, 0.9),
		},
		{
			Type:        "location",
			Title:       "Spatial Placement",
			Description: "Place this memory item in a specific location within your palace",
			Confidence:  h.uniform(0.8, 0.95),
		},
	}

	h.logger.InfoContext(ctx, "generated memory suggestions",
		"palace_id", string(palaceID),
		"count", len(suggestions))

	return SuggestionsResult{
		UserID:      userID,
		PalaceID:    palaceID,
		Suggestions: suggestions,
		ProcessedAt: h.now(),
	}, nil
}

// OptimizePalaceLayout scores the layout of a palace. Args: palace_id.
func (h *Handlers) OptimizePalaceLayout(ctx context.Context, args task.Args, progress task.Reporter) (any, error) {
	var palaceID json.RawMessage
	if err := args.Bind(&palaceID); err != nil {
		return nil, err
	}

	if err := progress.Report(ctx, 0, 100, "Analyzing palace structure..."); err != nil {
		return nil, err
	}
	if err := h.sleep(ctx, h.delays.AnalyzeLayout); err != nil {
		return nil, err
	}

	if err := progress.Report(ctx, 70, 100, "Calculating optimizations..."); err != nil {
		return nil, err
	}
	if err := h.sleep(ctx, h.delays.CalculateLayout); err != nil {
		return nil, err
	}

	result := LayoutResult{
		PalaceID: palaceID,
		Optimizations: Optimizations{
			LayoutScore: h.uniform(0.6, 0.9),
			Suggestions: []string{
				"Consider grouping related concepts in adjacent rooms",
				"Add more visual landmarks for better navigation",
				"Balance the number of items per room for optimal recall",
			},
			RecommendedChanges: []RecommendedChange{
				{
					RoomID:     1,
					Suggestion: "Move items with similar themes closer together",
					Impact:     "high",
				},
			},
		},
		AnalyzedAt: h.now(),
	}

	h.logger.InfoContext(ctx, "analyzed palace layout",
		"palace_id", string(palaceID),
		"layout_score", result.Optimizations.LayoutScore)
	return result, nil
}

// preview returns the first contentPreviewLength characters of s.
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= contentPreviewLength {
		return s
	}
	return string(runes[:contentPreviewLength])
}
