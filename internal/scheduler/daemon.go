package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/calloway/ledgerdesk/internal/notify"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// defaultCronExpr fires the run once a day, early morning.
const defaultCronExpr = "0 6 * * *"

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// DaemonOpts holds configuration for the scheduler daemon.
type DaemonOpts struct {
	DB       *gorm.DB
	CronExpr string        // 5-field cron expression; empty → daily at 06:00
	Sender   notify.Sender // nil → no chat notifications
	Out      io.Writer
}

// RunDaemon fires RunOnce on the configured cron schedule until ctx is
// cancelled. Each rule set catch-up is idempotent, so an operator running
// `run once` by hand while the daemon is up costs nothing.
func RunDaemon(ctx context.Context, opts DaemonOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("scheduler: db is required")
	}
	if opts.CronExpr == "" {
		opts.CronExpr = defaultCronExpr
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if _, err := cronParser.Parse(opts.CronExpr); err != nil {
		return fmt.Errorf("scheduler: parse cron %q: %w", opts.CronExpr, err)
	}

	c := cron.New(cron.WithParser(cronParser))
	_, err := c.AddFunc(opts.CronExpr, func() {
		runAndReport(ctx, opts)
	})
	if err != nil {
		return fmt.Errorf("scheduler: schedule: %w", err)
	}

	c.Start()
	fmt.Fprintf(opts.Out, "Scheduler daemon started (cron %q)\n", opts.CronExpr)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	fmt.Fprintln(opts.Out, "Scheduler daemon stopped.")
	return nil
}

// runAndReport executes one run and posts the outcome. Notification failures
// are logged, never fatal.
func runAndReport(ctx context.Context, opts DaemonOpts) {
	res, err := RunOnce(opts.DB, time.Now())
	if err != nil {
		log.Printf("scheduler: run failed: %v", err)
		if opts.Sender != nil {
			msg := notify.Message{
				Title:    "Scheduler run failed",
				Body:     err.Error(),
				Severity: "error",
			}
			if serr := opts.Sender.Send(ctx, msg); serr != nil {
				log.Printf("scheduler: notify: %v", serr)
			}
		}
		return
	}

	fmt.Fprintf(opts.Out, "[scheduler] %s created=%d advanced=%d skipped=%d\n",
		res.Today.Format("2006-01-02"), res.Created, res.Advanced, res.SkippedRunaway)

	if opts.Sender != nil {
		if serr := opts.Sender.Send(ctx, RunReportMessage(res)); serr != nil {
			log.Printf("scheduler: notify: %v", serr)
		}
	}
}

// RunReportMessage formats a run result for chat delivery. Runaway rules
// raise the severity so a misconfigured rule gets looked at.
func RunReportMessage(res *RunResult) notify.Message {
	severity := "info"
	if res.Created > 0 {
		severity = "success"
	}
	body := fmt.Sprintf("Recurring run for %s complete.", res.Today.Format("2006-01-02"))
	if res.SkippedRunaway > 0 {
		severity = "warning"
		body += fmt.Sprintf(" %d rule(s) hit the runaway cap and need attention.", res.SkippedRunaway)
	}
	return notify.Message{
		Title:    "Scheduler run",
		Body:     body,
		Severity: severity,
		Fields: []notify.Field{
			{Name: "created", Value: strconv.Itoa(res.Created)},
			{Name: "advanced", Value: strconv.Itoa(res.Advanced)},
			{Name: "skipped (runaway)", Value: strconv.Itoa(res.SkippedRunaway)},
		},
	}
}
