package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"trust-guard/bot"
	"trust-guard/escalation"
	"trust-guard/model"
	"trust-guard/utils"
)

// HandleTrustCommand renders a user's current score and the next
// punishment tier. This is a read-only path: it never touches the
// escalation logic.
func HandleTrustCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	targetUser := targetUserOption(s, i)
	if targetUser == nil {
		utils.SendFollowUpError(s, i.Interaction, "No user supplied.")
		return
	}

	record, err := b.Store.GetTrustRecord(i.GuildID, targetUser.ID)
	if err != nil {
		log.Printf("Failed to load trust record for user %s: %v", targetUser.ID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to load the trust record.")
		return
	}

	score := 0
	lastUpdated := "never"
	if record != nil {
		score = record.Score
		lastUpdated = fmt.Sprintf("<t:%d:R>", record.LastUpdatedAt)
	}

	rules, err := b.Store.GetPunishmentRules(i.GuildID)
	if err != nil {
		log.Printf("Failed to load punishment rules for guild %s: %v", i.GuildID, err)
		utils.SendFollowUpError(s, i.Interaction, "Failed to load the punishment rules.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "Trust Score",
		Color: 3447003,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", targetUser.ID)},
			{Name: "Score", Value: fmt.Sprintf("%d", score)},
			{Name: "Last Updated", Value: lastUpdated},
			{Name: "Next Punishment", Value: describeNext(escalation.NextForScore(rules, score))},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	}); err != nil {
		log.Printf("Failed to send trust score embed: %v", err)
	}
}

// HandleTrustRevokeCommand lifts an active timeout. The trust score is
// left untouched.
func HandleTrustRevokeCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	targetUser := targetUserOption(s, i)
	if targetUser == nil {
		utils.SendFollowUpError(s, i.Interaction, "No user supplied.")
		return
	}

	notifyChannelID := ""
	if guildCfg, ok := b.GetConfig().Guard.Guilds[i.GuildID]; ok {
		notifyChannelID = guildCfg.NotifyChannelID
	}

	if !b.Executor.RevokeTimeout(i.GuildID, targetUser.ID, notifyChannelID) {
		utils.SendFollowUpError(s, i.Interaction, "Failed to revoke the timeout. Check the bot's permissions.")
		return
	}

	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Timeout revoked for <@%s>.", targetUser.ID))
}

func targetUserOption(s *discordgo.Session, i *discordgo.InteractionCreate) *discordgo.User {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			return opt.UserValue(s)
		}
	}
	return nil
}

func describeNext(next *escalation.NextPunishment) string {
	if next == nil {
		return "no punishment rules configured"
	}
	if next.AlreadyReached {
		return fmt.Sprintf("already past the highest threshold (%d, %s)",
			next.Rule.Threshold, describeActions(next.Rule.Actions))
	}
	return fmt.Sprintf("%s at threshold %d", describeActions(next.Rule.Actions), next.Rule.Threshold)
}

func describeActions(actions []model.PunishmentAction) string {
	out := ""
	for idx, action := range actions {
		if idx > 0 {
			out += ", "
		}
		switch action.Type {
		case model.ActionTimeout:
			out += fmt.Sprintf("timeout (%s)", time.Duration(action.DurationSeconds)*time.Second)
		case model.ActionKick:
			out += "kick"
		case model.ActionBan:
			out += "ban"
		}
	}
	return out
}
