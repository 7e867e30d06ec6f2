package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tailor-portal/internal/artifacts"
	"tailor-portal/internal/events"
	"tailor-portal/internal/shared/config"
	localstore "tailor-portal/internal/shared/storage/object/local"
	memorystore "tailor-portal/internal/shared/storage/object/memory"
)

func TestBuildDefaultsToLocalStoreAndMemoryLedger(t *testing.T) {
	app, err := Build(context.Background(), config.Config{
		BackendBaseURL: "http://127.0.0.1:8000",
		BackendTimeout: time.Second,
		ArtifactDir:    t.TempDir(),
		DeliveryMode:   "store",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if _, ok := app.Store.(*localstore.Store); !ok {
		t.Fatalf("expected local store, got %T", app.Store)
	}
	if _, ok := app.ArtifactsRepo.(*artifacts.MemoryRepo); !ok {
		t.Fatalf("expected memory ledger, got %T", app.ArtifactsRepo)
	}
	if _, ok := app.Events.(events.Noop); !ok {
		t.Fatalf("expected noop events, got %T", app.Events)
	}
	if app.Router == nil {
		t.Fatalf("expected router")
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", resp.Code)
	}
}

func TestBuildMemoryStore(t *testing.T) {
	app, err := Build(context.Background(), config.Config{
		BackendBaseURL:    "http://127.0.0.1:8000",
		ArtifactStoreType: "memory",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if _, ok := app.Store.(*memorystore.Store); !ok {
		t.Fatalf("expected memory store, got %T", app.Store)
	}
}

func TestBuildRejectsBadBackendURL(t *testing.T) {
	if _, err := Build(context.Background(), config.Config{BackendBaseURL: "::nope"}); err == nil {
		t.Fatalf("expected error for invalid backend url")
	}
}

func TestBuildS3RequiresBucket(t *testing.T) {
	_, err := Build(context.Background(), config.Config{
		BackendBaseURL:    "http://127.0.0.1:8000",
		ArtifactStoreType: "s3",
	})
	if err == nil {
		t.Fatalf("expected error without S3_BUCKET")
	}
}

func TestBuildFallsBackWhenNATSUnavailableInDev(t *testing.T) {
	app, err := Build(context.Background(), config.Config{
		Env:               "dev",
		BackendBaseURL:    "http://127.0.0.1:8000",
		ArtifactStoreType: "memory",
		NATSURL:           "nats://127.0.0.1:1",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if _, ok := app.Events.(events.Noop); !ok {
		t.Fatalf("expected noop events, got %T", app.Events)
	}
}
