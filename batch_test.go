package docmark

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConvertAll_Order(t *testing.T) {
	engine := New(WithWorkers(3))

	var jobs []Job
	for i := range 20 {
		jobs = append(jobs, Job{
			Filename: fmt.Sprintf("doc%d.txt", i),
			Data:     []byte(fmt.Sprintf("document %d", i)),
			Options:  DefaultOptions(),
		})
	}
	jobs = append(jobs, Job{Filename: "bad.exe", Data: []byte("x"), Options: DefaultOptions()})

	results := engine.ConvertAll(context.Background(), jobs)
	if len(results) != len(jobs) {
		t.Fatalf("got %d results, want %d", len(results), len(jobs))
	}
	for i := range 20 {
		r := results[i]
		if r.Err != nil {
			t.Fatalf("job %d error = %v", i, r.Err)
		}
		if want := fmt.Sprintf("document %d\n", i); r.Markdown != want {
			t.Errorf("job %d = %q, want %q", i, r.Markdown, want)
		}
		if r.Filename != jobs[i].Filename {
			t.Errorf("job %d Filename = %q", i, r.Filename)
		}
	}
	if last := results[20]; !errors.Is(last.Err, ErrUnsupported) {
		t.Errorf("unsupported job error = %v", last.Err)
	}
}

func TestConvertAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{
		{Filename: "a.txt", Data: []byte("a"), Options: DefaultOptions()},
		{Filename: "b.txt", Data: []byte("b"), Options: DefaultOptions()},
	}
	for i, r := range New().ConvertAll(ctx, jobs) {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("job %d error = %v, want context.Canceled", i, r.Err)
		}
		if r.Markdown != "" {
			t.Errorf("job %d produced output", i)
		}
	}
}

func TestConvertAll_Empty(t *testing.T) {
	if got := New().ConvertAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("got %d results", len(got))
	}
}
