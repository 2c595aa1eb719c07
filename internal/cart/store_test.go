package cart

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// fakeRedis is an in-memory stand-in for pkg/redis.Client covering the
// commands the cart store issues.
type fakeRedis struct {
	data map[string]string
	ttls map[string]time.Duration
	sets map[string]map[string]bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data: map[string]string{},
		ttls: map[string]time.Duration{},
		sets: map[string]map[string]bool{},
	}
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
		delete(f.ttls, k)
	}
	return nil
}

func (f *fakeRedis) SAdd(ctx context.Context, key string, members ...any) error {
	set, ok := f.sets[key]
	if !ok {
		set = map[string]bool{}
		f.sets[key] = set
	}
	for _, m := range members {
		set[m.(string)] = true
	}
	return nil
}

func (f *fakeRedis) SRem(ctx context.Context, key string, members ...any) error {
	set, ok := f.sets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(set, m.(string))
	}
	if len(set) == 0 {
		delete(f.sets, key)
	}
	return nil
}

func (f *fakeRedis) SMembers(ctx context.Context, key string) ([]string, error) {
	members := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		members = append(members, m)
	}
	sort.Strings(members)
	return members, nil
}

func (f *fakeRedis) CartKey(token string) string {
	return "ez:cart:" + token
}

func (f *fakeRedis) CartIndexKey(productID string) string {
	return "ez:cart_index:" + productID
}

func testStore(t *testing.T) (*Store, *fakeRedis) {
	t.Helper()
	fake := newFakeRedis()
	store, err := NewStore(fake, 30*time.Minute)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, fake
}

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore(nil, time.Minute); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewStore(newFakeRedis(), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestLoadMissingReturnsEmptyCart(t *testing.T) {
	store, _ := testStore(t)

	c, err := store.Load(context.Background(), "tok-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart, got %d items", len(c.Items))
	}
	if c.Items == nil {
		t.Fatal("Items must be non-nil on an empty cart")
	}
}

func TestSaveWritesSnapshotAndIndexes(t *testing.T) {
	store, fake := testStore(t)
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	c := New()
	if err := c.Add(snapshot(t, first, "10", "", true), 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(snapshot(t, second, "5.500", "", true), 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Save(ctx, "tok-a", c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if fake.ttls[fake.CartKey("tok-a")] != 30*time.Minute {
		t.Fatalf("snapshot ttl = %v, want 30m", fake.ttls[fake.CartKey("tok-a")])
	}

	loaded, err := store.Load(ctx, "tok-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Items) != 2 || loaded.TotalItems != 3 {
		t.Fatalf("loaded %d items / %d total, want 2 / 3", len(loaded.Items), loaded.TotalItems)
	}
	if !loaded.TotalPrice.Equal(money(t, "25.500")) {
		t.Fatalf("total price = %s, want 25.500", loaded.TotalPrice)
	}

	for _, id := range []uuid.UUID{first, second} {
		tokens, err := store.TokensHolding(ctx, id)
		if err != nil {
			t.Fatalf("TokensHolding: %v", err)
		}
		if len(tokens) != 1 || tokens[0] != "tok-a" {
			t.Fatalf("index for %s = %v, want [tok-a]", id, tokens)
		}
	}
}

func TestSaveUnindexesDroppedProducts(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()
	kept, dropped := uuid.New(), uuid.New()

	c := New()
	if err := c.Add(snapshot(t, kept, "10", "", true), 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(snapshot(t, dropped, "20", "", true), 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Save(ctx, "tok-a", c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	c.Remove(dropped)
	if err := store.Save(ctx, "tok-a", c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tokens, err := store.TokensHolding(ctx, dropped)
	if err != nil {
		t.Fatalf("TokensHolding: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("dropped product still indexed: %v", tokens)
	}
	tokens, err = store.TokensHolding(ctx, kept)
	if err != nil {
		t.Fatalf("TokensHolding: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "tok-a" {
		t.Fatalf("kept product index = %v, want [tok-a]", tokens)
	}
}

func TestIndexTracksMultipleCarts(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()
	id := uuid.New()

	for _, token := range []string{"tok-a", "tok-b"} {
		c := New()
		if err := c.Add(snapshot(t, id, "10", "", true), 1); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if err := store.Save(ctx, token, c); err != nil {
			t.Fatalf("Save %s: %v", token, err)
		}
	}

	tokens, err := store.TokensHolding(ctx, id)
	if err != nil {
		t.Fatalf("TokensHolding: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "tok-a" || tokens[1] != "tok-b" {
		t.Fatalf("index = %v, want [tok-a tok-b]", tokens)
	}
}

func TestDeleteCleansSnapshotAndIndexes(t *testing.T) {
	store, fake := testStore(t)
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	c := New()
	if err := c.Add(snapshot(t, first, "10", "", true), 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(snapshot(t, second, "20", "", true), 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Save(ctx, "tok-a", c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(ctx, "tok-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := fake.data[fake.CartKey("tok-a")]; ok {
		t.Fatal("snapshot still present after delete")
	}
	for _, id := range []uuid.UUID{first, second} {
		tokens, err := store.TokensHolding(ctx, id)
		if err != nil {
			t.Fatalf("TokensHolding: %v", err)
		}
		if len(tokens) != 0 {
			t.Fatalf("token still indexed for %s after delete: %v", id, tokens)
		}
	}

	reloaded, err := store.Load(ctx, "tok-a")
	if err != nil {
		t.Fatalf("Load after delete: %v", err)
	}
	if !reloaded.IsEmpty() {
		t.Fatal("expected empty cart after delete")
	}
}
