package store

import (
	"testing"

	"github.com/pysugar/surfvault/internal/store/models"
)

func TestUsagePercent(t *testing.T) {
	tests := []struct {
		used, total, want int32
	}{
		{used: 50, total: 0, want: 0},
		{used: 0, total: 0, want: 0},
		{used: 50, total: 200, want: 25},
		{used: 1, total: 3, want: 33},
		{used: 200, total: 200, want: 100},
	}
	for _, tt := range tests {
		if got := models.UsagePercent(tt.used, tt.total); got != tt.want {
			t.Errorf("UsagePercent(%d, %d) = %d, want %d", tt.used, tt.total, got, tt.want)
		}
	}
}

func TestAddResetRecord_UpdatesStats(t *testing.T) {
	s := newTestStore(t)
	a := mustAddAccount(t, s, "a@example.com")
	b := mustAddAccount(t, s, "b@example.com")

	for _, used := range []int32{50, 30} {
		if err := s.AddResetRecord(models.NewResetRecord(a, "owner@example.com", used, 200, false)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.AddResetRecord(models.NewResetRecord(b, "owner@example.com", 10, 0, true)); err != nil {
		t.Fatal(err)
	}

	stats := s.GetResetStats()
	sa := stats[a.ID.String()]
	if sa.ResetCount != 2 || sa.TotalUsedQuota != 80 || sa.LastResetAt == nil {
		t.Fatalf("unexpected stats for a: %+v", sa)
	}
	if stats[b.ID.String()].ResetCount != 1 {
		t.Fatalf("unexpected stats for b: %+v", stats[b.ID.String()])
	}

	recs := s.GetResetRecords(&a.ID)
	if len(recs) != 2 || recs[0].UsedQuotaBefore != 30 {
		t.Fatalf("expected a's records newest first, got %+v", recs)
	}
	if recs[1].UsagePercent != 25 {
		t.Fatalf("expected 25%%, got %d", recs[1].UsagePercent)
	}
	if all := s.GetResetRecords(nil); len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
}

func TestDeleteAccount_DropsResetHistory(t *testing.T) {
	s := newTestStore(t)
	a := mustAddAccount(t, s, "a@example.com")
	b := mustAddAccount(t, s, "b@example.com")
	for _, acc := range []models.Account{a, b} {
		if err := s.AddResetRecord(models.NewResetRecord(acc, "owner@example.com", 10, 100, false)); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DeleteAccount(a.ID); err != nil {
		t.Fatal(err)
	}
	stats := s.GetResetStats()
	if _, ok := stats[a.ID.String()]; ok {
		t.Fatalf("stats kept for deleted account: %+v", stats)
	}
	if _, ok := stats[b.ID.String()]; !ok {
		t.Fatal("stats dropped for remaining account")
	}
	if recs := s.GetResetRecords(&a.ID); len(recs) != 0 {
		t.Fatalf("records kept for deleted account: %+v", recs)
	}
	if recs := s.GetResetRecords(nil); len(recs) != 1 {
		t.Fatalf("expected 1 remaining record, got %d", len(recs))
	}
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	a := mustAddAccount(t, s, "a@example.com")
	if err := s.SetAccountStatus(a.ID, models.StatusDisabled); err != nil {
		t.Fatal(err)
	}
	mustAddAccount(t, s, "b@example.com")

	entries := []models.OperationLog{
		models.NewOperationLog(models.OpResetCredits, models.OpSuccess, "ok"),
		models.NewOperationLog(models.OpResetCredits, models.OpFailed, "bad"),
		models.NewOperationLog(models.OpLogin, models.OpSuccess, "ok"),
		models.NewOperationLog(models.OpLogin, models.OpPending, "wait"),
	}
	for _, e := range entries {
		if err := s.AddLog(e); err != nil {
			t.Fatal(err)
		}
	}

	st := s.GetStats()
	if st.TotalAccounts != 2 || st.ActiveAccounts != 1 {
		t.Fatalf("unexpected account totals: %+v", st)
	}
	if st.TotalOperations != 4 || st.SuccessfulOperations != 2 || st.FailedOperations != 1 || st.SuccessRate != 50 {
		t.Fatalf("unexpected operation totals: %+v", st)
	}
	if st.TotalResets != 2 || st.SuccessfulResets != 1 || st.FailedResets != 1 || st.ResetSuccessRate != 50 {
		t.Fatalf("unexpected reset totals: %+v", st)
	}
	if st.LastOperation == nil || !st.LastOperation.Equal(entries[3].Timestamp) {
		t.Fatalf("unexpected last operation: %v", st.LastOperation)
	}
}
