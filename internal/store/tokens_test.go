package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/hsetracker/internal/db"
)

func TestRevokeToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "jti-logout")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Fatal("fresh token reported as revoked")
	}

	expires := time.Now().Add(time.Hour)
	for i := 0; i < 2; i++ {
		if err := RevokeToken(ctx, database, "jti-logout", expires); err != nil {
			t.Fatalf("RevokeToken #%d: %v", i+1, err)
		}
	}

	revoked, err = IsTokenRevoked(ctx, database, "jti-logout")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("logged out token is not revoked")
	}

	revoked, err = IsTokenRevoked(ctx, database, "jti-other")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("unrelated token reported as revoked")
	}
}

func TestPurgeRevokedTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	// Mixed zones must still compare correctly.
	cet := time.FixedZone("CET", 3600)
	if err := RevokeToken(ctx, database, "jti-old", now.Add(-time.Minute).In(cet)); err != nil {
		t.Fatal(err)
	}
	if err := RevokeToken(ctx, database, "jti-live", now.Add(30*time.Minute).In(cet)); err != nil {
		t.Fatal(err)
	}

	n, err := PurgeRevokedTokens(ctx, database, now)
	if err != nil {
		t.Fatalf("PurgeRevokedTokens: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1", n)
	}

	if revoked, _ := IsTokenRevoked(ctx, database, "jti-old"); revoked {
		t.Error("expired revocation was kept")
	}
	if revoked, _ := IsTokenRevoked(ctx, database, "jti-live"); !revoked {
		t.Error("live revocation was purged")
	}
}
