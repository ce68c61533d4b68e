package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type recordingEmitter struct {
	bundles []Bundle
	err     error
}

func (e *recordingEmitter) Emit(_ context.Context, b Bundle) error {
	e.bundles = append(e.bundles, b)
	return e.err
}

func TestFinishOnlySuccessWhenClean(t *testing.T) {
	rec := &recordingEmitter{}
	r := New("bill_versions", rec)
	bundles, err := r.Finish(context.Background(), Counts{Bills: 3, Versions: 7})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Status != StatusSuccess {
		t.Fatalf("expected single success bundle, got %+v", bundles)
	}
	if bundles[0].Counts.Bills != 3 || bundles[0].Counts.Versions != 7 {
		t.Fatalf("counts not carried: %+v", bundles[0].Counts)
	}
	if len(rec.bundles) != 1 {
		t.Fatalf("emitter saw %d bundles", len(rec.bundles))
	}
}

func TestFinishEmitsWarningsNotesThenSuccess(t *testing.T) {
	rec := &recordingEmitter{}
	r := New("bill_versions", rec)
	r.Warn("no valid date", map[string]any{"bill_version_id": "hr1-113-ih"})
	r.Note("no version files", map[string]any{"bill_id": "hr2-113"})
	r.Add(StatusWarning, Entry{Message: "citation extraction failed"})

	bundles, err := r.Finish(context.Background(), Counts{})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	var statuses []string
	for _, b := range bundles {
		statuses = append(statuses, b.Status)
		if b.RunID != r.RunID() {
			t.Fatalf("run id mismatch")
		}
	}
	if strings.Join(statuses, ",") != "warning,note,success" {
		t.Fatalf("got %v", statuses)
	}
	if len(bundles[0].Entries) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(bundles[0].Entries))
	}
}

func TestFinishKeepsEmittingAfterFailure(t *testing.T) {
	failing := &recordingEmitter{err: errors.New("db down")}
	ok := &recordingEmitter{}
	r := New("bill_versions", failing, ok)
	r.Warn("w", nil)

	_, err := r.Finish(context.Background(), Counts{})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if len(ok.bundles) != 2 {
		t.Fatalf("second emitter should see both bundles, saw %d", len(ok.bundles))
	}
}

func TestLogEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := LogEmitter{Log: zerolog.New(&buf)}
	err := e.Emit(context.Background(), Bundle{Status: StatusWarning, Message: "1 warnings", Entries: []Entry{{Message: "x"}}})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"entries"`) {
		t.Fatalf("unexpected log line %s", out)
	}
}
