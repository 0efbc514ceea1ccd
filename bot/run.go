package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trust-guard/utils"
)

func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	if err := b.SeedGuildRules(); err != nil {
		log.Printf("Failed to seed guild rules: %v", err)
	}

	log.Println("Registering commands for configured guilds...")
	for guildID := range b.GetConfig().Guard.Guilds {
		b.RefreshCommands(guildID)
	}

	b.scheduler.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	utils.LogInfo(b.Session, b.GetConfig().LogChannelID, "System", "Startup", "Trust guard has started successfully.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
