package signal

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	cases := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0.3, 1.0, 0.5},
		{0.1, 0.3, 1.0, 0.3},
		{1.2, 0.3, 1.0, 1.0},
		{0.3, 0.3, 1.0, 0.3},
		{1.0, 0.3, 1.0, 1.0},
	}
	for _, tc := range cases {
		if got := Clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Errorf("Clamp(%g, %g, %g) = %g, want %g", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestPriorFor(t *testing.T) {
	if PriorFor(KindReadmeUpdate) <= PriorFor(KindCommit) {
		t.Error("a direct content update should score a higher prior than a routine commit")
	}
	if PriorFor(Kind("release")) != ConfidenceFloor {
		t.Errorf("unknown kind prior = %g, want floor", PriorFor(Kind("release")))
	}
}

func TestStableIDs(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if CommitID("abc123") != "commit:abc123" {
		t.Errorf("CommitID = %s", CommitID("abc123"))
	}
	if IssueID(42) != "issue:42" {
		t.Errorf("IssueID = %s", IssueID(42))
	}
	// Same event must always yield the same id
	if ReadmeID("hello-world", ts) != ReadmeID("hello-world", ts) {
		t.Error("ReadmeID is not stable")
	}
}

func TestPayloadPrimaryText(t *testing.T) {
	cases := []struct {
		payload Payload
		want    string
	}{
		{CommitPayload{Message: "fix race in poller"}, "fix race in poller"},
		{IssuePayload{Title: "login broken"}, "login broken"},
		{ReadmeUpdatePayload{Summary: "README updated"}, "README updated"},
		{RepoEventPayload{Description: "branch created"}, "branch created"},
	}
	for _, tc := range cases {
		if got := tc.payload.PrimaryText(); got != tc.want {
			t.Errorf("PrimaryText = %q, want %q", got, tc.want)
		}
	}
}

func TestSourceData(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sig := Signal{
		ID:   CommitID("abc"),
		Kind: KindCommit,
		Payload: CommitPayload{
			SHA: "abc", Message: "m", Author: "fraz", Date: ts, URL: "https://example.com/c/abc",
		},
	}
	sd := sig.SourceData()
	if sd == nil || sd.Author != "fraz" || sd.URL == "" {
		t.Errorf("SourceData = %+v", sd)
	}

	unknown := Signal{Kind: KindRepoEvent, Payload: RepoEventPayload{Description: "x"}}
	if unknown.SourceData() != nil {
		t.Error("repo events carry no source data")
	}
}

func TestParseCategory(t *testing.T) {
	if ParseCategory("Code") != CategoryCode {
		t.Error("ParseCategory should be case-insensitive")
	}
	if ParseCategory("weird") != CategoryUnknown {
		t.Error("unrecognized category should parse as unknown")
	}
}
