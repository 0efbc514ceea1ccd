// Package punish applies concrete moderation actions against guild
// members and supports revoking an active timeout. All operations are
// best effort: failures are reported to the caller as false, logged,
// and surfaced to the admin log channel, never panicked.
package punish

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"trust-guard/model"
	"trust-guard/utils"
)

// Discord caps the ban message-purge window at seven days.
const maxPurgeDays = 7

// ModerationSession is the slice of the Discord session the executor
// depends on. *discordgo.Session satisfies it.
type ModerationSession interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Executor carries out punishment actions through the Discord session.
type Executor struct {
	session      ModerationSession
	logChannelID string
}

func NewExecutor(session ModerationSession, logChannelID string) *Executor {
	return &Executor{
		session:      session,
		logChannelID: logChannelID,
	}
}

// Execute applies one action against a member. It returns false when
// the action could not be applied; the failure is logged and reported
// to the admin log channel so staff can act manually.
func (e *Executor) Execute(guildID, userID string, action model.PunishmentAction, notifyChannelID string) bool {
	member, err := e.session.GuildMember(guildID, userID)
	if err != nil {
		e.reportFailure(guildID, userID, action, fmt.Sprintf("could not retrieve member: %v", err))
		return false
	}

	reason := RenderReason(action.ReasonTemplate, member.User)

	var verb string
	switch action.Type {
	case model.ActionTimeout:
		if action.DurationSeconds <= 0 {
			e.reportFailure(guildID, userID, action, "timeout action is missing duration_seconds")
			return false
		}
		until := time.Now().Add(time.Duration(action.DurationSeconds) * time.Second)
		if err := e.session.GuildMemberTimeout(guildID, userID, &until); err != nil {
			e.reportFailure(guildID, userID, action, fmt.Sprintf("timeout failed: %v", err))
			return false
		}
		verb = fmt.Sprintf("timed out for %s", time.Duration(action.DurationSeconds)*time.Second)
	case model.ActionKick:
		if err := e.session.GuildMemberDeleteWithReason(guildID, userID, reason); err != nil {
			e.reportFailure(guildID, userID, action, fmt.Sprintf("kick failed: %v", err))
			return false
		}
		verb = "kicked"
	case model.ActionBan:
		if err := e.session.GuildBanCreateWithReason(guildID, userID, reason, purgeDays(action.DurationSeconds)); err != nil {
			e.reportFailure(guildID, userID, action, fmt.Sprintf("ban failed: %v", err))
			return false
		}
		verb = "banned"
	default:
		// only reachable with malformed stored rules; configuration
		// validation rejects unknown types at the boundary
		e.reportFailure(guildID, userID, action, fmt.Sprintf("unhandled action type %q", action.Type))
		return false
	}

	log.Printf("User %s in guild %s %s: %s", userID, guildID, verb, reason)

	if action.Notify {
		e.notify(member, guildID, notifyChannelID, verb, reason)
	}
	return true
}

// RevokeTimeout clears an active timeout. Revoking a member who is not
// timed out is not an error.
func (e *Executor) RevokeTimeout(guildID, userID, notifyChannelID string) bool {
	if err := e.session.GuildMemberTimeout(guildID, userID, nil); err != nil {
		log.Printf("Failed to revoke timeout for user %s in guild %s: %v", userID, guildID, err)
		utils.LogError(e.session, e.logChannelID, "Punish", "RevokeTimeout",
			fmt.Sprintf("user %s in guild %s: %v", userID, guildID, err))
		return false
	}

	log.Printf("Timeout revoked for user %s in guild %s", userID, guildID)

	if notifyChannelID != "" {
		embed := &discordgo.MessageEmbed{
			Title:       "Timeout Revoked",
			Description: fmt.Sprintf("The timeout for <@%s> has been lifted.", userID),
			Color:       getEmbedColor("revoke"),
			Timestamp:   time.Now().Format(time.RFC3339),
		}
		if _, err := e.session.ChannelMessageSendEmbed(notifyChannelID, embed); err != nil {
			log.Printf("Failed to send revoke notification to channel %s: %v", notifyChannelID, err)
		}
	}
	return true
}

// notify sends the channel notification and a private copy to the
// punished member. Notification failures never roll back the action.
func (e *Executor) notify(member *discordgo.Member, guildID, notifyChannelID, verb, reason string) {
	embed := &discordgo.MessageEmbed{
		Title: "Moderation Action",
		Color: getEmbedColor("action"),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s> (%s)", member.User.ID, member.User.String())},
			{Name: "Action", Value: verb},
			{Name: "Reason", Value: reason},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if notifyChannelID != "" {
		if _, err := e.session.ChannelMessageSendEmbed(notifyChannelID, embed); err != nil {
			log.Printf("Failed to send punishment notification to channel %s: %v", notifyChannelID, err)
		}
	}

	dm := &discordgo.MessageEmbed{
		Title:       "Moderation Notice",
		Description: fmt.Sprintf("You have been %s: %s", verb, reason),
		Color:       getEmbedColor("action"),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	utils.SendPrivateEmbedMessage(e.session, member.User.ID, dm)
}

func (e *Executor) reportFailure(guildID, userID string, action model.PunishmentAction, detail string) {
	log.Printf("Failed to execute %s against user %s in guild %s: %s", action.Type, userID, guildID, detail)
	utils.LogError(e.session, e.logChannelID, "Punish", "Execute",
		fmt.Sprintf("%s against user %s in guild %s: %s", action.Type, userID, guildID, detail))
}

func purgeDays(durationSeconds int) int {
	if durationSeconds <= 0 {
		return 0
	}
	days := (durationSeconds + 86399) / 86400
	if days > maxPurgeDays {
		return maxPurgeDays
	}
	return days
}

func getEmbedColor(kind string) int {
	switch kind {
	case "revoke":
		return 3066993 // Green
	default:
		return 15158332 // Red
	}
}
