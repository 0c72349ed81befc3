package scheduler

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"github.com/schaferjart/telegram-finance/internal/config"
	"github.com/schaferjart/telegram-finance/internal/report"
	"github.com/schaferjart/telegram-finance/internal/service"
)

// Scheduler fires the weekly penalty check and broadcasts the report to the
// registered group chat. Delivery failures are logged and never stop the next
// run.
type Scheduler struct {
	bot     *tgbotapi.BotAPI
	service *service.Service
	cron    *cron.Cron
	loc     *time.Location
	spec    string
}

func New(bot *tgbotapi.BotAPI, svc *service.Service, cfg *config.Config) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	s := &Scheduler{
		bot:     bot,
		service: svc,
		cron:    cron.New(cron.WithLocation(loc)),
		loc:     loc,
		spec:    cfg.ReportCronSpec,
	}
	if _, err := s.cron.AddFunc(cfg.ReportCronSpec, s.runWeeklyReport); err != nil {
		return nil, fmt.Errorf("scheduling weekly report: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("✅ Weekly report scheduled (%s, %s)", s.spec, s.loc)
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runWeeklyReport() {
	doc, err := s.service.Snapshot()
	if err != nil {
		log.Printf("❌ Weekly report: cannot load data: %v", err)
		return
	}
	if doc.GroupChatID == 0 {
		log.Println("⚠️  No group chat ID set for weekly reports")
		return
	}

	outcome, err := s.service.CheckPenalties()
	if err != nil {
		log.Printf("❌ Weekly report: penalty check failed: %v", err)
		return
	}

	text := report.Weekly(outcome, time.Now().In(s.loc).Format("2006-01-02"))
	msg := tgbotapi.NewMessage(doc.GroupChatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("❌ Failed to send weekly report: %v", err)
	}
}
