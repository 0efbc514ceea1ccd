package punish

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// DefaultReasonTemplate is used when a rule action carries no template.
const DefaultReasonTemplate = "Automated action: trust score threshold exceeded by {tag}"

// RenderReason substitutes the {user}, {userId} and {tag} placeholders
// in a reason template for the targeted user.
func RenderReason(template string, user *discordgo.User) string {
	if template == "" {
		template = DefaultReasonTemplate
	}
	replacer := strings.NewReplacer(
		"{user}", user.Username,
		"{userId}", user.ID,
		"{tag}", user.String(),
	)
	return replacer.Replace(template)
}
