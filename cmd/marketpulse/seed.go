package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"

	"github.com/umputun/marketpulse/pkg/config"
	"github.com/umputun/marketpulse/pkg/domain"
)

// itemUpserter stores records of a kind
type itemUpserter interface {
	Upsert(ctx context.Context, kind domain.Kind, recs []domain.Record) error
}

// seedItems stores coins, insights and memes from the config. Entries keep the config order,
// entries without an id get one derived from their content.
func seedItems(ctx context.Context, store itemUpserter, seed config.SeedConfig) error {
	for _, kind := range []domain.Kind{domain.KindCoin, domain.KindInsight, domain.KindMeme} {
		raws := seed.Items(kind)
		if len(raws) == 0 {
			continue
		}
		recs := make([]domain.Record, 0, len(raws))
		for i, raw := range raws {
			rec := domain.NewRecord(kind, raw)
			if rec.ID == "" {
				id, err := contentID(kind, rec.Fields)
				if err != nil {
					return fmt.Errorf("seed %s[%d]: %w", kind, i, err)
				}
				rec.ID = id
			}
			rec.Rank = int64(len(raws) - i)
			recs = append(recs, rec)
		}
		if err := store.Upsert(ctx, kind, recs); err != nil {
			return fmt.Errorf("store %s: %w", kind, err)
		}
		lgr.Printf("[INFO] seeded %d %s", len(recs), kind)
	}
	return nil
}

// contentID makes a stable uuid from the kind and the fields, map keys are sorted by json encoding
func contentID(kind domain.Kind, fields map[string]any) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, append([]byte(string(kind)+":"), data...)).String(), nil
}
