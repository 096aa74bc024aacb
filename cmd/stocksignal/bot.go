package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockSignal/internal/broker"
	"StockSignal/internal/notifier"
	"StockSignal/internal/scheduler"
)

func newBotCmd() *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the scheduled watchlist analysis with Telegram reports and commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			if err := a.cfg.ValidateTelegram(); err != nil {
				return err
			}
			log := a.log

			tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, log)
			rec := a.openRecorder()
			defer rec.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := scheduler.NewScheduler(ctx, a.analyzer, tn, rec, a.cfg.DataSource.Watchlist, log)
			if p := a.cfg.Paper; p.Enabled {
				pb, err := broker.NewPaperBroker(p.StateFile, p.StartingCash, p.OrderSize, log)
				if err != nil {
					return fmt.Errorf("init paper broker: %w", err)
				}
				sched.Broker = pb
				log.WithField("state_file", p.StateFile).Info("paper trading enabled")
			}
			if err := sched.Register(a.cfg.Schedule.AnalysisCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Info("telegram polling started")

			if runOnStart || os.Getenv("RUN_ON_START") == "true" {
				log.Info("run on start enabled, analysing watchlist now")
				go sched.RunNow()
			}

			log.Info("StockSignal bot is running. Press Ctrl+C to stop.")
			<-ctx.Done()
			log.Info("shutdown signal received, stopping...")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Analyse the watchlist immediately")
	return cmd
}
