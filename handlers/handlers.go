package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"trust-guard/bot"
	"trust-guard/utils"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"trust": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleTrustCommand(s, i, b)
		},
		"trust_revoke": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleTrustRevokeCommand(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
		if b.GetConfig().LogChannelID != "" {
			err := utils.LogInfo(s, b.GetConfig().LogChannelID, "System", "Startup", "Trust guard is online.")
			if err != nil {
				log.Printf("Failed to send startup log: %v", err)
			}
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		HandleMessageCreate(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
}
