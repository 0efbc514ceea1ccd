package defs

import "github.com/bwmarrin/discordgo"

var trustPermission = int64(discordgo.PermissionModerateMembers)

var Trust = &discordgo.ApplicationCommand{
	Name:                     "trust",
	Description:              "Show a user's trust score and the next punishment tier",
	DefaultMemberPermissions: &trustPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The user to look up",
			Required:    true,
		},
	},
}

var TrustRevoke = &discordgo.ApplicationCommand{
	Name:                     "trust_revoke",
	Description:              "Lift a user's active timeout without changing their trust score",
	DefaultMemberPermissions: &trustPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "The user whose timeout should be lifted",
			Required:    true,
		},
	},
}
