package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"sbt/internal/credential/models"
	"sbt/pkg/domain"
	"sbt/pkg/platform/sentinel"
)

// All keys share the {sbt} hash tag so the Lua scripts touch a single cluster slot.
const (
	keyPrefix     = "sbt:{sbt}:"
	tokenPrefix   = keyPrefix + "token:"
	ownerPrefix   = keyPrefix + "owner:"
	issuedSetKey  = keyPrefix + "issued"
	liveSetKey    = keyPrefix + "live"
	replyOK       = "OK"
	replyOwner    = "OWNER_TAKEN"
	replyIDIssued = "ID_TAKEN"
)

// KEYS: owner key, token key, issued set, live set
// ARGV: id, owner, issuer, burn_auth, issued_at
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 'OWNER_TAKEN'
end
if redis.call('SISMEMBER', KEYS[3], ARGV[1]) == 1 then
	return 'ID_TAKEN'
end
redis.call('HSET', KEYS[2], 'id', ARGV[1], 'owner', ARGV[2], 'issuer', ARGV[3], 'burn_auth', ARGV[4], 'issued_at', ARGV[5])
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SADD', KEYS[3], ARGV[1])
redis.call('SADD', KEYS[4], ARGV[1])
return 'OK'
`)

// KEYS: token key, owner key, live set
// ARGV: id, owner
// The owner key is resolved by the caller so every key the script touches is
// declared. A token whose owner no longer matches is treated as gone.
var deleteScript = redis.NewScript(`
local fields = redis.call('HGETALL', KEYS[1])
if #fields == 0 then
	return false
end
if redis.call('HGET', KEYS[1], 'owner') ~= ARGV[2] then
	return false
end
redis.call('DEL', KEYS[1])
if redis.call('GET', KEYS[2]) == ARGV[1] then
	redis.call('DEL', KEYS[2])
end
redis.call('SREM', KEYS[3], ARGV[1])
return fields
`)

// RedisStore persists credentials in Redis. Each mutation is a single Lua
// script, which Redis executes atomically.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func tokenKey(id domain.CredentialID) string { return tokenPrefix + id.String() }
func ownerKey(owner domain.Account) string  { return ownerPrefix + owner.String() }

func (s *RedisStore) Insert(ctx context.Context, c *models.Credential) error {
	// go-redis honours deadlines but not cancellation.
	if err := ctx.Err(); err != nil {
		return err
	}
	reply, err := insertScript.Run(ctx, s.client,
		[]string{ownerKey(c.Owner), tokenKey(c.ID), issuedSetKey, liveSetKey},
		c.ID.String(), c.Owner.String(), c.Issuer.String(), int(c.BurnAuth), c.IssuedAt.UTC().Format(time.RFC3339Nano),
	).Text()
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	switch reply {
	case replyOK:
		return nil
	case replyOwner:
		return sentinel.ErrOwnerTaken
	case replyIDIssued:
		return sentinel.ErrIDTaken
	default:
		return fmt.Errorf("insert credential: unexpected reply %q", reply)
	}
}

func (s *RedisStore) FindByID(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	fields, err := s.client.HGetAll(ctx, tokenKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return credentialFromHash(fields)
}

func (s *RedisStore) FindByOwner(ctx context.Context, owner domain.Account) (*models.Credential, error) {
	raw, err := s.client.Get(ctx, ownerKey(owner)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by owner: %w", err)
	}
	id, err := domain.ParseCredentialID(raw)
	if err != nil {
		return nil, fmt.Errorf("parse stored token id: %w", err)
	}
	// A concurrent delete between the two reads surfaces as not found.
	return s.FindByID(ctx, id)
}

func (s *RedisStore) Delete(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	owner, err := s.client.HGet(ctx, tokenKey(id), "owner").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("delete credential: %w", err)
	}
	reply, err := deleteScript.Run(ctx, s.client,
		[]string{tokenKey(id), ownerKey(domain.Account(owner)), liveSetKey},
		id.String(), owner,
	).StringSlice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("delete credential: %w", err)
	}
	fields := make(map[string]string, len(reply)/2)
	for i := 0; i+1 < len(reply); i += 2 {
		fields[reply[i]] = reply[i+1]
	}
	return credentialFromHash(fields)
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, liveSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return int(n), nil
}

func credentialFromHash(fields map[string]string) (*models.Credential, error) {
	id, err := domain.ParseCredentialID(fields["id"])
	if err != nil {
		return nil, fmt.Errorf("parse stored token id: %w", err)
	}
	burnAuth, err := strconv.ParseUint(fields["burn_auth"], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("parse stored burn auth: %w", err)
	}
	issuedAt, err := time.Parse(time.RFC3339Nano, fields["issued_at"])
	if err != nil {
		return nil, fmt.Errorf("parse stored issue time: %w", err)
	}
	return &models.Credential{
		ID:       id,
		Owner:    domain.Account(fields["owner"]),
		Issuer:   domain.Account(fields["issuer"]),
		BurnAuth: models.BurnAuth(burnAuth),
		IssuedAt: issuedAt,
	}, nil
}
