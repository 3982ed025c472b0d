package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/zefir_shop/internal/events"
	"github.com/Skotchmaster/zefir_shop/internal/search"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

const sideEffectTimeout = 5 * time.Second

// ProductIndex is the full-text index kept next to the catalog.
type ProductIndex interface {
	Index(ctx context.Context, doc search.Document) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

// publish runs after the database commit. Failures are logged only: the
// write already happened and the caller must see it succeed.
func publish(ctx context.Context, pub events.Publisher, topic, key string, event any) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := pub.Publish(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "key", key, "error", err)
	}
}

func indexProduct(ctx context.Context, idx ProductIndex, doc search.Document) {
	if idx == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := idx.Index(ctx, doc); err != nil {
		logging.FromContext(ctx).Warn("index_product_error", "product_id", doc.ID, "error", err)
	}
}

func unindexProduct(ctx context.Context, idx ProductIndex, id uint) {
	if idx == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := idx.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("unindex_product_error", "product_id", id, "error", err)
	}
}
