package conversion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const historyKeyPrefix = "leadqual:conversion:"

// RedisHistoryStore keeps conversion records as JSON values under
// leadqual:conversion:<lead_key>. SETNX makes InsertIfAbsent atomic across
// processes. Records carry no TTL: conversion history must outlive any cache
// eviction horizon.
type RedisHistoryStore struct {
	rdb *redis.Client
}

func NewRedisHistoryStore(rdb *redis.Client) *RedisHistoryStore {
	return &RedisHistoryStore{rdb: rdb}
}

func (s *RedisHistoryStore) Has(ctx context.Context, leadKey string) (bool, error) {
	n, err := s.rdb.Exists(ctx, historyKeyPrefix+leadKey).Result()
	if err != nil {
		return false, fmt.Errorf("check conversion history: %w", err)
	}
	return n > 0, nil
}

func (s *RedisHistoryStore) InsertIfAbsent(ctx context.Context, rec Record) (bool, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode conversion record: %w", err)
	}
	inserted, err := s.rdb.SetNX(ctx, historyKeyPrefix+rec.LeadKey, payload, 0).Result()
	if err != nil {
		return false, fmt.Errorf("insert conversion record: %w", err)
	}
	return inserted, nil
}

func (s *RedisHistoryStore) Get(ctx context.Context, leadKey string) (Record, bool, error) {
	payload, err := s.rdb.Get(ctx, historyKeyPrefix+leadKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get conversion record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode conversion record: %w", err)
	}
	return rec, true, nil
}
