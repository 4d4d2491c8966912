package bookshelf

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestDisconnect_Nil(t *testing.T) {
	if err := Disconnect(context.Background(), nil); err != nil {
		t.Fatalf("expected nil-safe disconnect, got %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	db, err := Connect(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200", "bookshelf")
	if err == nil {
		t.Fatal("expected ping failure for unreachable server")
	}
	if db != nil {
		t.Fatal("expected nil database on failure")
	}
	if DB() != nil {
		t.Fatal("failed connect should not set the global handle")
	}
}

func TestConnect_Integration(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := Connect(ctx, uri, "bookshelf_connect_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if DB() != db {
		t.Fatal("expected Connect to set the global handle")
	}
	if db.Name() != "bookshelf_connect_test" {
		t.Fatalf("unexpected database name %q", db.Name())
	}

	if err := Disconnect(ctx, db); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if DB() != nil {
		t.Fatal("expected Disconnect to clear the global handle")
	}
}
