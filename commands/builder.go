package commands

import (
	"github.com/bwmarrin/discordgo"

	"trust-guard/commands/defs"
)

func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Trust,
		defs.TrustRevoke,
	}
}
