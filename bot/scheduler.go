package bot

import (
	"log"

	"github.com/robfig/cron/v3"

	"trust-guard/utils"
)

// Scheduler runs the background jobs: the behavior window sweep and
// the optional trust score decay.
type Scheduler struct {
	bot  *Bot
	cron *cron.Cron
}

func NewScheduler(b *Bot) *Scheduler {
	return &Scheduler{
		bot:  b,
		cron: cron.New(),
	}
}

func (s *Scheduler) Start() {
	cfg := s.bot.GetConfig().Guard

	_, err := s.cron.AddFunc("@every "+cfg.SweepInterval.String(), func() {
		if evicted := s.bot.Windows.Cleanup(); evicted > 0 {
			log.Printf("Behavior window sweep evicted %d entries", evicted)
		}
	})
	if err != nil {
		log.Printf("Failed to schedule window sweep: %v", err)
	}

	if cfg.Decay.Enabled {
		// interval was validated at config load; day units supported
		interval, err := utils.ParseDuration(cfg.Decay.Interval)
		if err != nil {
			log.Printf("Failed to parse decay interval: %v", err)
		} else {
			_, err = s.cron.AddFunc("@every "+interval.String(), func() {
				affected, err := s.bot.Store.DecayTrustScores(cfg.Decay.Amount)
				if err != nil {
					log.Printf("Trust score decay failed: %v", err)
					return
				}
				log.Printf("Trust score decay reduced %d records by %d", affected, cfg.Decay.Amount)
			})
			if err != nil {
				log.Printf("Failed to schedule trust score decay: %v", err)
			}
		}
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Println("Scheduler stopped.")
}
