package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"dbmodel/internal/errors"
	"dbmodel/internal/model"
)

const maxTxRetries = 5

// envelope is the value stored under a document key.
type envelope struct {
	Indexes map[string]string `json:"indexes,omitempty"`
	Body    json.RawMessage   `json:"body"`
}

type redisStore struct {
	client redis.UniversalClient
}

// NewRedis builds a Redis-backed store. Documents live under doc:<key>, the
// keys of a type in the set type:<type> and index values in the hash
// index:<type>:<attribute>.
func NewRedis(client redis.UniversalClient) Store {
	return &redisStore{client: client}
}

func docKey(id string) string          { return "doc:" + id }
func typeKey(typ string) string        { return "type:" + typ }
func indexKey(typ, attr string) string { return "index:" + typ + ":" + attr }

func indexKeys(typ string, idx map[string]string) []string {
	keys := make([]string, 0, len(idx))
	for attr := range idx {
		keys = append(keys, indexKey(typ, attr))
	}
	return keys
}

// watch runs fn in an optimistic transaction, retrying when a watched key
// changes underneath it.
func (s *redisStore) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return fmt.Errorf("redis transaction: %w", redis.TxFailedErr)
}

func (s *redisStore) Create(ctx context.Context, doc Document) error {
	id := doc.Key.String()
	payload, err := json.Marshal(envelope{Indexes: doc.Indexes, Body: doc.Body})
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}

	watched := append([]string{docKey(id)}, indexKeys(doc.Key.Type, doc.Indexes)...)
	return s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, docKey(id)).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", errors.ErrRecordExists, id)
		}
		for attr, v := range doc.Indexes {
			taken, err := tx.HExists(ctx, indexKey(doc.Key.Type, attr), v).Result()
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: %s %s=%s", errors.ErrRecordExists, doc.Key.Type, attr, v)
			}
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, docKey(id), payload, 0)
			p.SAdd(ctx, typeKey(doc.Key.Type), id)
			for attr, v := range doc.Indexes {
				p.HSet(ctx, indexKey(doc.Key.Type, attr), v, id)
			}
			return nil
		})
		return err
	}, watched...)
}

func (s *redisStore) Merge(ctx context.Context, key model.Key, changes model.Entry, indexes map[string]string) (json.RawMessage, error) {
	id := key.String()
	var merged json.RawMessage

	watched := append([]string{docKey(id)}, indexKeys(key.Type, indexes)...)
	err := s.watch(ctx, func(tx *redis.Tx) error {
		env, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if merged, err = merge(env.Body, changes); err != nil {
			return err
		}

		next := make(map[string]string, len(env.Indexes)+len(indexes))
		for attr, v := range env.Indexes {
			next[attr] = v
		}
		for attr, v := range indexes {
			owner, err := tx.HGet(ctx, indexKey(key.Type, attr), v).Result()
			if err != nil && err != redis.Nil {
				return err
			}
			if err == nil && owner != id {
				return fmt.Errorf("%w: %s %s=%s", errors.ErrRecordExists, key.Type, attr, v)
			}
			next[attr] = v
		}

		payload, err := json.Marshal(envelope{Indexes: next, Body: merged})
		if err != nil {
			return fmt.Errorf("encode %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, docKey(id), payload, 0)
			for attr, v := range indexes {
				if old, ok := env.Indexes[attr]; ok && old != v {
					p.HDel(ctx, indexKey(key.Type, attr), old)
				}
				p.HSet(ctx, indexKey(key.Type, attr), v, id)
			}
			return nil
		})
		return err
	}, watched...)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *redisStore) Get(ctx context.Context, key model.Key) (json.RawMessage, error) {
	env, err := s.load(ctx, s.client, key.String())
	if err != nil {
		return nil, err
	}
	return env.Body, nil
}

func (s *redisStore) Delete(ctx context.Context, key model.Key) error {
	id := key.String()
	return s.watch(ctx, func(tx *redis.Tx) error {
		env, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, docKey(id))
			p.SRem(ctx, typeKey(key.Type), id)
			for attr, v := range env.Indexes {
				p.HDel(ctx, indexKey(key.Type, attr), v)
			}
			return nil
		})
		return err
	}, docKey(id))
}

func (s *redisStore) List(ctx context.Context, typ string) ([]json.RawMessage, error) {
	ids, err := s.client.SMembers(ctx, typeKey(typ)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", typ, err)
	}
	out := []json.RawMessage{}
	if len(ids) == 0 {
		return out, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", typ, err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// removed between SMEMBERS and MGET
			continue
		}
		var env envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			return nil, fmt.Errorf("decode %s: %w", ids[i], err)
		}
		out = append(out, env.Body)
	}
	return out, nil
}

func (s *redisStore) Lookup(ctx context.Context, typ, attribute, value string) (json.RawMessage, error) {
	id, err := s.client.HGet(ctx, indexKey(typ, attribute), value).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s %s=%s", errors.ErrRecordNotFound, typ, attribute, value)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", typ, err)
	}
	env, err := s.load(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	return env.Body, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *redisStore) load(ctx context.Context, c getter, id string) (envelope, error) {
	var env envelope
	raw, err := c.Get(ctx, docKey(id)).Bytes()
	if err == redis.Nil {
		return env, fmt.Errorf("%w: %s", errors.ErrRecordNotFound, id)
	}
	if err != nil {
		return env, fmt.Errorf("get %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("decode %s: %w", id, err)
	}
	return env, nil
}
