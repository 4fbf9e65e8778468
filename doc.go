/*
Package sessionlock keeps per-visitor session state consistent across a fleet of
stateless processes that share nothing but a Redis store.

Every session is one Redis hash holding seven fields: created, locked, lockId,
lockDate, timeout, flags and items. A process that wants to modify a session first
takes exclusive access with an exclusive read, receives the session's lock token
(lockId) and presents it again when it writes, releases or removes the session.
Stale tokens are ignored, so a process that lost its grant can never overwrite a
newer holder's data.

Each read-modify-write runs inside a short critical section guarded by a claim key
(SET NX PX) next to the session hash. The claim is bounded twice: callers give up
after the acquire timeout and a crashed holder blocks others for at most the hold
timeout. Expiry belongs to the store alone; every write re-applies the session TTL.

# Layout

  - pkg/session: the Synchronizer implementing the session lifecycle
  - pkg/codec: the seven-field record codec and payload serializers
  - pkg/lock: the claim-key lock
  - pkg/adapters/redis: the go-redis store
  - pkg/adapters/http: a JSON host adapter
  - pkg/config: koanf-backed configuration
  - cmd/sessionctl: server and operator CLI

# Usage

	cfg, err := config.Load("sessionlock.yaml")
	if err != nil {
		log.Fatal(err)
	}
	store, err := redis.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	sync, err := session.New(cfg, store, session.WithLogger(slog.Default()))
	if err != nil {
		log.Fatal(err)
	}

	res, err := sync.GetItemExclusive(ctx, "visitor-42")
	if err != nil {
		log.Fatal(err)
	}
	if res.Found && !res.Locked {
		res.Items.Set("last_seen", time.Now())
		err = sync.SetAndReleaseItemExclusive(ctx, "visitor-42", res.LockID, false, res.Items, res.Timeout)
	}
*/
package sessionlock
