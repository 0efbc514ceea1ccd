package handlers

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"trust-guard/bot"
	"trust-guard/model"
)

// HandleMessageCreate feeds guild messages into the escalation engine.
// discordgo dispatches each event on its own goroutine, so events for
// different users run fully in parallel here.
func HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	timestamp := m.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	dctx := &model.DetectionContext{
		GuildID:   m.GuildID,
		UserID:    m.Author.ID,
		MessageID: m.ID,
		Content:   m.Content,
		Timestamp: timestamp,
	}

	if err := b.Engine.Process(dctx); err != nil {
		log.Printf("Failed to process message %s: %v", m.ID, err)
	}
}
