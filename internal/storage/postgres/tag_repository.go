package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bmaxtar/storefront/internal/domain"
)

const (
	contentTypeCacheTTL     = 10 * time.Minute
	contentTypeCacheCleanup = time.Minute
)

type tagRepository struct {
	db *sql.DB
	// contentTypes кэширует строки content_types: таблица крошечная и почти
	// неизменяемая, дергать её на каждый поиск меток незачем.
	contentTypes *gocache.Cache
}

// NewTagRepository создаёт PostgreSQL-реализацию TagRepository.
func NewTagRepository(store *Store) domain.TagRepository {
	return &tagRepository{
		db:           store.DB(),
		contentTypes: gocache.New(contentTypeCacheTTL, contentTypeCacheCleanup),
	}
}

func (r *tagRepository) TagsFor(model string, objectID int64) ([]domain.TaggedItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	contentTypeID, err := r.contentTypeID(ctx, model)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ti.id, ti.tag_id, ti.content_type_id, ti.object_id,
		       t.id, t.label
		FROM tagged_items ti
		JOIN tags t ON t.id = ti.tag_id
		WHERE ti.content_type_id = $1
		  AND ti.object_id = $2
		ORDER BY t.label
	`, contentTypeID, objectID)
	if err != nil {
		return nil, fmt.Errorf("select tagged items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.TaggedItem, 0)
	for rows.Next() {
		var (
			item domain.TaggedItem
			tag  domain.Tag
		)
		if err := rows.Scan(
			&item.ID, &item.TagID, &item.ContentTypeID, &item.ObjectID,
			&tag.ID, &tag.Label,
		); err != nil {
			return nil, fmt.Errorf("scan tagged item: %w", err)
		}
		item.Tag = &tag
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tagged items: %w", err)
	}

	return items, nil
}

func (r *tagRepository) contentTypeID(ctx context.Context, model string) (int64, error) {
	if cached, ok := r.contentTypes.Get(model); ok {
		return cached.(int64), nil
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM content_types WHERE model = $1`, model,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", domain.ErrUnknownContentType, model)
		}
		return 0, fmt.Errorf("select content type: %w", err)
	}

	r.contentTypes.Set(model, id, gocache.DefaultExpiration)
	return id, nil
}

var _ domain.TagRepository = (*tagRepository)(nil)
