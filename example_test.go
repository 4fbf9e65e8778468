package sessionlock_test

import (
	"context"
	"fmt"
	"log"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/sessionlock/pkg/adapters/redis"
	"github.com/aretw0/sessionlock/pkg/config"
	"github.com/aretw0/sessionlock/pkg/session"
)

// Example shows two request handlers sharing one session through the store.
func Example() {
	mr, err := miniredis.Run()
	if err != nil {
		log.Fatal(err)
	}
	defer mr.Close()

	ctx := context.Background()
	cfg := config.Default()
	cfg.Address = mr.Addr()
	cfg.ClientStrategy = config.StrategyBasic

	store, err := redis.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	sync, err := session.New(cfg, store)
	if err != nil {
		log.Fatal(err)
	}

	// Request 1 creates the session and fills it.
	if err := sync.CreateUninitialized(ctx, "visitor-42", 20); err != nil {
		log.Fatal(err)
	}
	res, err := sync.GetItemExclusive(ctx, "visitor-42")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("first read:", res.Actions, "lock", res.LockID)

	// Request 2 arrives while request 1 still holds the session.
	other, err := sync.GetItem(ctx, "visitor-42")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("concurrent read locked:", other.Locked)

	res.Items.Set("cart", []string{"book"})
	if err := sync.SetAndReleaseItemExclusive(ctx, "visitor-42", res.LockID, false, res.Items, 20); err != nil {
		log.Fatal(err)
	}

	after, err := sync.GetItem(ctx, "visitor-42")
	if err != nil {
		log.Fatal(err)
	}
	cart, _ := after.Items.Get("cart")
	fmt.Println("cart:", cart)

	// Output:
	// first read: InitializeItem lock 1
	// concurrent read locked: true
	// cart: [book]
}
