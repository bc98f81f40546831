package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hrassist/recruiter/internal/events"

	"go.uber.org/zap"
)

func TestBuildPublisherDefaultsToBroker(t *testing.T) {
	t.Parallel()

	publisher, closeFn, err := buildPublisher(&Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := publisher.(*events.Broker); !ok {
		t.Fatalf("expected the in-process broker, got %T", publisher)
	}
	if closeFn != nil {
		t.Fatalf("the broker needs no close function")
	}
}

func TestServicesCloseRunsAllClosers(t *testing.T) {
	t.Parallel()

	var first, second bool
	svc := &services{closers: []func() error{
		func() error {
			first = true
			return errors.New("boom")
		},
		func() error {
			second = true
			return nil
		},
	}}

	svc.close(zap.NewNop())

	if !first || !second {
		t.Fatalf("closers ran: first=%v second=%v, want both", first, second)
	}
}

func TestBuildServicesErrorPath(t *testing.T) {
	t.Parallel()

	config := &Config{
		Database: filepath.Join(t.TempDir(), "recruiter.db"),
	}

	svc, err := buildServices(context.Background(), config, zap.NewNop())
	if err == nil {
		svc.close(zap.NewNop())
		t.Fatalf("expected an error without an ai section")
	}
	if svc != nil {
		t.Fatalf("expected no services on error, got %+v", svc)
	}
}
