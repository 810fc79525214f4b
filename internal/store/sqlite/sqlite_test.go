package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tanguofu/openclaw/internal/store"
)

func openTestStores(t *testing.T) (*PairingStore, *ChannelAllowStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%q) failed: %v", path, err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPairingStore(db), NewChannelAllowStore(db)
}

func TestPairingUpsert_Idempotent(t *testing.T) {
	pairing, _ := openTestStores(t)
	ctx := context.Background()

	first, err := pairing.Upsert(ctx, "slack", "U1", store.PairingMeta{Name: "alice"})
	if err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if !first.Created {
		t.Error("first Upsert: Created = false, want true")
	}
	if len(first.Code) != codeLength {
		t.Errorf("code length = %d, want %d", len(first.Code), codeLength)
	}

	second, err := pairing.Upsert(ctx, "slack", "U1", store.PairingMeta{Name: "alice"})
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if second.Created {
		t.Error("second Upsert: Created = true, want false for existing request")
	}
	if second.Code != first.Code {
		t.Errorf("second Upsert returned code %q, want same code %q", second.Code, first.Code)
	}
	if second.ID != first.ID {
		t.Error("second Upsert returned a different request ID")
	}
}

func TestPairingUpsert_DistinctSendersGetDistinctCodes(t *testing.T) {
	pairing, _ := openTestStores(t)
	ctx := context.Background()

	a, err := pairing.Upsert(ctx, "slack", "U1", store.PairingMeta{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := pairing.Upsert(ctx, "slack", "U2", store.PairingMeta{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Code == b.Code {
		t.Error("distinct senders received the same pairing code")
	}
}

func TestPairingList_OldestFirst(t *testing.T) {
	pairing, _ := openTestStores(t)
	ctx := context.Background()

	for _, sender := range []string{"U1", "U2", "U3"} {
		if _, err := pairing.Upsert(ctx, "slack", sender, store.PairingMeta{}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := pairing.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List returned %d requests, want 3", len(got))
	}
}

func TestPairingApprove_PromotesAndRetires(t *testing.T) {
	pairing, allow := openTestStores(t)
	ctx := context.Background()

	req, err := pairing.Upsert(ctx, "slack", "U1", store.PairingMeta{Name: "alice"})
	if err != nil {
		t.Fatal(err)
	}

	approved, err := pairing.Approve(ctx, req.Code)
	if err != nil {
		t.Fatalf("Approve(%q) failed: %v", req.Code, err)
	}
	if approved.SenderID != "U1" {
		t.Errorf("approved SenderID = %q, want %q", approved.SenderID, "U1")
	}

	entries, err := allow.List(ctx, "slack")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0] != "U1" {
		t.Errorf("allow-list = %v, want [U1]", entries)
	}

	remaining, err := pairing.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("pairing requests after approve = %d, want 0", len(remaining))
	}
}

func TestPairingApprove_UnknownCode(t *testing.T) {
	pairing, _ := openTestStores(t)

	if _, err := pairing.Approve(context.Background(), "NOSUCH"); err == nil {
		t.Error("Approve of unknown code succeeded, want error")
	}
}

func TestPairingRevoke(t *testing.T) {
	pairing, _ := openTestStores(t)
	ctx := context.Background()

	if _, err := pairing.Upsert(ctx, "slack", "U1", store.PairingMeta{}); err != nil {
		t.Fatal(err)
	}
	if err := pairing.Revoke(ctx, "slack", "U1"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := pairing.Revoke(ctx, "slack", "U1"); err == nil {
		t.Error("second Revoke succeeded, want error for missing request")
	}
}

func TestChannelAllowStore_Roundtrip(t *testing.T) {
	_, allow := openTestStores(t)
	ctx := context.Background()

	if err := allow.Add(ctx, "slack", "U1"); err != nil {
		t.Fatal(err)
	}
	// Re-adding is a no-op, not an error.
	if err := allow.Add(ctx, "slack", "U1"); err != nil {
		t.Fatalf("duplicate Add failed: %v", err)
	}
	if err := allow.Add(ctx, "slack", "U2"); err != nil {
		t.Fatal(err)
	}

	entries, err := allow.List(ctx, "slack")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %v, want 2 distinct", entries)
	}

	// Entries are scoped per channel.
	other, err := allow.List(ctx, "telegram")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("entries for unrelated channel = %v, want none", other)
	}

	if err := allow.Remove(ctx, "slack", "U1"); err != nil {
		t.Fatal(err)
	}
	entries, err = allow.List(ctx, "slack")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0] != "U2" {
		t.Errorf("entries after remove = %v, want [U2]", entries)
	}
}

func TestGenerateCode_AlphabetOnly(t *testing.T) {
	for i := 0; i < 32; i++ {
		code := generateCode()
		if len(code) != codeLength {
			t.Fatalf("code length = %d, want %d", len(code), codeLength)
		}
		for _, r := range code {
			found := false
			for _, a := range codeAlphabet {
				if r == a {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}
