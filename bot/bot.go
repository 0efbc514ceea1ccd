package bot

import (
	"log"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"trust-guard/cache"
	"trust-guard/commands"
	"trust-guard/detector"
	"trust-guard/escalation"
	"trust-guard/model"
	"trust-guard/punish"
	trust_db "trust-guard/utils/database/trust"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	Store              *trust_db.Store
	Engine             *escalation.Manager
	Executor           *punish.Executor
	Windows            *cache.Store[[]model.BehaviorRecord]
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	config             atomic.Value // *model.Config
	scheduler          *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func New(cfg *model.Config, store *trust_db.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dg.StateEnabled = false
	// bounds every moderation call so one stuck request cannot starve
	// processing for other users
	dg.Client.Timeout = cfg.Guard.ModerationTimeout

	windows := cache.New[[]model.BehaviorRecord]()
	executor := punish.NewExecutor(dg, cfg.LogChannelID)

	notifyChannels := make(map[string]string, len(cfg.Guard.Guilds))
	for guildID, guildCfg := range cfg.Guard.Guilds {
		notifyChannels[guildID] = guildCfg.NotifyChannelID
	}

	detectors := []detector.Detector{
		detector.NewTextSpam(cfg.Guard.Spam, windows),
	}

	b := &Bot{
		Session:  dg,
		Store:    store,
		Engine:   escalation.New(store, executor, detectors, notifyChannels),
		Executor: executor,
		Windows:  windows,
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

// SeedGuildRules writes the configured punishment rules for guilds
// that have none stored yet. Stored rules win over config seeds so
// admin edits survive restarts.
func (b *Bot) SeedGuildRules() error {
	for guildID, guildCfg := range b.GetConfig().Guard.Guilds {
		if len(guildCfg.Rules) == 0 {
			continue
		}
		has, err := b.Store.HasPunishmentRules(guildID)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		log.Printf("Seeding %d punishment rules for guild %s", len(guildCfg.Rules), guildID)
		if err := b.Store.SavePunishmentRules(guildID, guildCfg.Rules); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) RefreshCommands(guildID string) {
	cmds := commands.GenerateCommands()
	log.Printf("Registering %d commands for guild %s...", len(cmds), guildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Session.Close()
}
