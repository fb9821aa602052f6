package wire

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func analyticsFixture(team bool) []byte {
	tz := []byte("Asia/Shanghai")
	var b []byte
	b = append(b, 0x12, 0x03, 0xBA, 0x01, 0x00) // cascade_lines
	b = append(b, 0x12, 0x03, 0xC2, 0x01, 0x00) // cascade_tool_usage
	b = append(b, 0x12, 0x03, 0xCA, 0x01, 0x00) // cascade_runs
	b = append(b, 0x12, 0x02, 0x0A, 0x00)       // completion_stats
	b = append(b, 0x12, 0x02, 0x1A, 0x00)       // completions_by_language
	b = append(b, 0x12, 0x02, 0x62, 0x00)       // chats_by_model
	b = append(b, 0x12, 0x11, 0x12, 0x0F, 0x0A, 0x0D)
	b = append(b, tz...)
	b = append(b, 0x12, 0x11, 0x52, 0x0F, 0x0A, 0x0D)
	b = append(b, tz...)
	if team {
		b = append(b, 0x12, 0x02, 0x7A, 0x00) // percent_code_written
	}
	b = append(b, 0x1A, 0x06, 0x08, 0x80, 0xE2, 0xCF, 0xAA, 0x06)
	b = append(b, 0x22, 0x06, 0x08, 0x80, 0x85, 0xD5, 0xAA, 0x06)
	b = append(b, 0x2A, 0x07)
	b = append(b, "key-123"...)
	return b
}

func TestBuildAnalyticsRequest_ByteExact(t *testing.T) {
	for _, team := range []bool{false, true} {
		got, err := BuildAnalyticsRequest(AnalyticsRequest{
			APIKey:   "key-123",
			Start:    time.Unix(1700000000, 0),
			End:      time.Unix(1700086400, 0),
			TimeZone: "Asia/Shanghai",
			Team:     team,
		})
		if err != nil {
			t.Fatalf("team=%v: %v", team, err)
		}
		want := analyticsFixture(team)
		if !bytes.Equal(got, want) {
			t.Fatalf("team=%v payload mismatch\n got % X\nwant % X", team, got, want)
		}
	}
}

func TestBuildAnalyticsRequest_Subset(t *testing.T) {
	got, err := BuildAnalyticsRequest(AnalyticsRequest{
		APIKey:  "k",
		Start:   time.Unix(1, 0),
		End:     time.Unix(2, 0),
		Queries: []string{"chats_by_model"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []byte{0x12, 0x02, 0x62, 0x00, 0x1A, 0x02, 0x08, 0x01, 0x22, 0x02, 0x08, 0x02, 0x2A, 0x01, 'k'}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}

func TestBuildAnalyticsRequest_Errors(t *testing.T) {
	if _, err := BuildAnalyticsRequest(AnalyticsRequest{Start: time.Unix(0, 0), End: time.Unix(0, 0)}); err == nil {
		t.Fatal("expected missing api key error")
	}
	if _, err := BuildAnalyticsRequest(AnalyticsRequest{APIKey: "k", Queries: []string{"nope"}}); !errors.Is(err, ErrUnknownQuery) {
		t.Fatal("expected unknown query error")
	}
	_, err := BuildAnalyticsRequest(AnalyticsRequest{
		APIKey: "k",
		Start:  time.Date(-5, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Unix(0, 0),
	})
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}
