package infrastructure

import "context"

// Drop deletes the memo collection
func (mm *MongoMemo) Drop(ctx context.Context) error {
	return mm.memoColl.Drop(ctx)
}
