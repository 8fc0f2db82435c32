package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLedgerMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_ledger_entries.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no ledger migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS ledger_entries",
		"CHECK (amount <> 0)",
		"CHECK (account_type IN ('ADMIN', 'COURIER_LINK', 'ALLY_LINK'))",
		"CHECK (ref_type IN ('RECHARGE_REQUEST', 'ORDER', 'ADJUSTMENT'))",
		"idx_ledger_account",
		"DROP TABLE IF EXISTS ledger_entries",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestWalletMigrationsKeepBalancesNonNegative(t *testing.T) {
	for _, name := range []string{"*_create_admins.sql", "*_create_team_links.sql"} {
		matches, err := filepath.Glob(filepath.Join("migrations", name))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) == 0 {
			t.Fatalf("no migration matching %s found", name)
		}

		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		if !strings.Contains(string(data), "CHECK (balance >= 0)") {
			t.Errorf("%s missing balance check", matches[0])
		}
	}
}
