// Package cache provides a TTL-bounded in-memory read cache.
//
// Catalog listings (all books, all users) are read far more often than
// they change, so services cache the full listing under a fixed key and
// invalidate it on any write to the underlying table:
//
//	store := cache.NewStore(cache.Config{TTL: 5 * time.Minute})
//	defer store.Stop()
//
//	if v, ok := store.Get("books:all"); ok {
//	    return v.([]model.Book), nil
//	}
//	books, err := repo.FindAll(ctx)
//	store.Set("books:all", books)
//
// Writers call Invalidate("books:all") after a successful mutation so
// the next read repopulates from the database. Expired entries are
// swept by a background goroutine; call Stop on shutdown.
package cache
