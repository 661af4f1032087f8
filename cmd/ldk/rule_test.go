package main

import (
	"strings"
	"testing"
)

func TestRuleAdd_MaterializesAndLists(t *testing.T) {
	cfgPath := writeTestConfig(t)
	runCmd(t, "db", "init", "-c", cfgPath)

	out := runCmd(t, "rule", "add", "Monthly close", "--schedule", "monthly", "--day", "10", "-c", cfgPath)
	if !strings.Contains(out, "first task materialized") {
		t.Errorf("rule add output missing materialization: %s", out)
	}

	out = runCmd(t, "rule", "list", "-c", cfgPath)
	if !strings.Contains(out, "Monthly close") {
		t.Errorf("rule list missing new rule: %s", out)
	}

	// The first occurrence exists as a recurring task.
	out = runCmd(t, "task", "list", "--type", "recurring", "-c", cfgPath)
	if !strings.Contains(out, "Monthly close") {
		t.Errorf("task list missing materialized first task: %s", out)
	}
}

func TestRuleAdd_ClientFrequency(t *testing.T) {
	cfgPath := writeTestConfig(t)
	runCmd(t, "db", "init", "-c", cfgPath)
	runCmd(t, "client", "add", "Acme LLC", "--frequency", "quarterly", "--skip-onboarding", "-c", cfgPath)

	out := runCmd(t, "rule", "add", "Quarterly close", "--schedule", "client_frequency", "--client", "1", "--day", "15", "-c", cfgPath)
	if !strings.Contains(out, "(quarterly)") {
		t.Errorf("client_frequency should resolve to quarterly: %s", out)
	}
}

func TestRuleDeactivate(t *testing.T) {
	cfgPath := writeTestConfig(t)
	runCmd(t, "db", "init", "-c", cfgPath)
	runCmd(t, "rule", "add", "Monthly close", "--day", "10", "-c", cfgPath)

	runCmd(t, "rule", "deactivate", "1", "-c", cfgPath)
	out := runCmd(t, "rule", "list", "-c", cfgPath)
	if strings.Contains(out, "Monthly close") {
		t.Errorf("deactivated rule still listed as active: %s", out)
	}
	out = runCmd(t, "rule", "list", "--all", "-c", cfgPath)
	if !strings.Contains(out, "Monthly close") {
		t.Errorf("--all should include deactivated rules: %s", out)
	}
}

func TestRunOnce_Backfill(t *testing.T) {
	cfgPath := writeTestConfig(t)
	runCmd(t, "db", "init", "-c", cfgPath)
	runCmd(t, "rule", "add", "Monthly close", "--day", "10", "--first-due", "2025-01-10", "-c", cfgPath)

	// Cursor sits at 2025-02-10 after creation; catching up to April
	// creates February, March, and April occurrences.
	out := runCmd(t, "run", "once", "--as-of", "2025-04-15", "-c", cfgPath)
	if !strings.Contains(out, "Created 3 tasks") {
		t.Errorf("backfill output = %s, want 3 created", out)
	}

	// Same-day re-run is a no-op.
	out = runCmd(t, "run", "once", "--as-of", "2025-04-15", "-c", cfgPath)
	if !strings.Contains(out, "Created 0 tasks") {
		t.Errorf("re-run output = %s, want 0 created", out)
	}
}
