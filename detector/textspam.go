package detector

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"trust-guard/cache"
	"trust-guard/model"
)

const recentMessagesNamespace = "recent-messages"

// TextSpam scores repeated, rapid-fire and shouted messages over a
// short per-user window of recent activity.
type TextSpam struct {
	cfg     model.SpamConfig
	windows *cache.Store[[]model.BehaviorRecord]
}

func NewTextSpam(cfg model.SpamConfig, windows *cache.Store[[]model.BehaviorRecord]) *TextSpam {
	return &TextSpam{
		cfg:     cfg,
		windows: windows,
	}
}

func (d *TextSpam) Name() string {
	return "text-spam"
}

func (d *TextSpam) Detect(dctx *model.DetectionContext) (*model.DetectionResult, error) {
	key := cache.Key(recentMessagesNamespace, dctx.GuildID, dctx.UserID)

	window, _ := d.windows.Get(key)
	window = append(window, model.BehaviorRecord{
		Content:   dctx.Content,
		Timestamp: dctx.Timestamp,
		EventID:   dctx.MessageID,
	})
	// length cap is independent of TTL expiry: drop the oldest entries
	if len(window) > d.cfg.WindowMax {
		window = window[len(window)-d.cfg.WindowMax:]
	}
	d.windows.Set(key, window, d.cfg.WindowTTL)

	result := &model.DetectionResult{
		Metadata: map[string]string{
			"window_size": strconv.Itoa(len(window)),
		},
	}

	duplicates := 0
	for _, rec := range window {
		if rec.Content == dctx.Content {
			duplicates++
		}
	}
	if duplicates >= d.cfg.DuplicateThreshold {
		result.ScoreDelta += duplicates * d.cfg.DuplicateWeight
		result.Reasons = append(result.Reasons, fmt.Sprintf("sent the same message %d times", duplicates))
		result.Metadata["duplicates"] = strconv.Itoa(duplicates)
	}

	rapid := 0
	cutoff := dctx.Timestamp.Add(-d.cfg.RapidWindow)
	for _, rec := range window {
		if !rec.Timestamp.Before(cutoff) {
			rapid++
		}
	}
	if rapid >= d.cfg.RapidCount {
		result.ScoreDelta += rapid * d.cfg.RapidWeight
		result.Reasons = append(result.Reasons, fmt.Sprintf("sent %d messages within %s", rapid, d.cfg.RapidWindow))
		result.Metadata["rapid"] = strconv.Itoa(rapid)
	}

	shouted := 0
	for _, rec := range window {
		if len(rec.Content) >= d.cfg.CapsMinLength && isShouted(rec.Content) {
			shouted++
		}
	}
	if shouted >= d.cfg.CapsRepeat {
		result.ScoreDelta += d.cfg.CapsWeight
		result.Reasons = append(result.Reasons, fmt.Sprintf("sent %d long all-uppercase messages", shouted))
		result.Metadata["shouted"] = strconv.Itoa(shouted)
	}

	return result, nil
}

// isShouted reports whether content contains letters and none of them
// are lowercase.
func isShouted(content string) bool {
	hasLetter := false
	for _, r := range content {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter && content == strings.ToUpper(content)
}
