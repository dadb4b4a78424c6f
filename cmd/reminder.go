package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/nattapongw/banchee/internal/notification"
	"github.com/nattapongw/banchee/internal/transaction"
	"github.com/nattapongw/banchee/internal/workflow"
	"github.com/nattapongw/banchee/pkg/logger"
)

var (
	reminderCmd = &cobra.Command{
		Use:   "reminder",
		Short: "Run the stale-document reminder scheduler",
		Long:  `Scan for records stuck waiting on a tax invoice or WHT certificate and notify the company. Read-only; no record is modified.`,
		RunE:  runReminder,
	}
	reminderOnce bool
)

// Statuses where the company is waiting on paperwork from someone
// else. Only these can go stale.
var staleStatuses = []string{
	string(workflow.StatusWaitingTaxInvoice),
	string(workflow.StatusWHTPendingIssue),
	string(workflow.StatusWHTIssued),
	string(workflow.StatusWaitingInvoiceIssue),
	string(workflow.StatusWHTPendingCert),
}

func init() {
	reminderCmd.Flags().BoolVar(&reminderOnce, "once", false, "Run one scan and exit instead of scheduling")
}

func runReminder(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Format == "json" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	lg := logger.LoggerWrapper()

	sqlxDB, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	defer sqlxDB.Close()

	db, err := initGorm(sqlxDB)
	if err != nil {
		return fmt.Errorf("failed to init gorm: %w", err)
	}

	dispatcher := notification.FromConfig(cfg.Notification, lg)

	scan := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		cutoff := time.Now().AddDate(0, 0, -cfg.Reminder.StaleAfter)
		stale, err := findStaleTransactions(ctx, db, cutoff, cfg.Reminder.MaxPerCycle)
		if err != nil {
			lg.Error("reminder scan failed", "error", err)
			return
		}

		lg.Info("reminder scan finished", "stale_count", len(stale), "cutoff", cutoff)

		for _, txn := range stale {
			payload := map[string]interface{}{
				"transaction_id": txn.ID,
				"description":    txn.Description,
				"status":         txn.WorkflowStatus,
				"stale_since":    txn.UpdatedAt,
			}
			if err := dispatcher.Notify(ctx, txn.CompanyID, notification.KindDocumentReminder, payload); err != nil {
				lg.Warn("reminder notify failed", "transaction_id", txn.ID, "error", err)
			}
		}
	}

	if reminderOnce {
		scan()
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Reminder.Schedule, scan); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", cfg.Reminder.Schedule, err)
	}

	lg.Info("reminder scheduler started", "schedule", cfg.Reminder.Schedule)
	c.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	lg.Info("received signal, stopping scheduler", "signal", sig)
	<-c.Stop().Done()
	return nil
}

func findStaleTransactions(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) ([]transaction.Transaction, error) {
	var stale []transaction.Transaction
	err := db.WithContext(ctx).
		Where("workflow_status IN ? AND updated_at < ?", staleStatuses, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&stale).Error
	return stale, err
}
