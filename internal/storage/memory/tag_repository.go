package memory

import (
	"fmt"
	"sort"

	"github.com/bmaxtar/storefront/internal/domain"
)

type tagRepositoryInMemory struct {
	store *Store
}

// NewTagRepository создаёт in-memory реализацию TagRepository.
func NewTagRepository(store *Store) domain.TagRepository {
	return &tagRepositoryInMemory{store: store}
}

func (r *tagRepositoryInMemory) TagsFor(model string, objectID int64) ([]domain.TaggedItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	contentTypeID, ok := r.store.contentTypes[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownContentType, model)
	}

	items := make([]domain.TaggedItem, 0)
	for _, item := range r.store.taggedItems {
		if item.ContentTypeID != contentTypeID || item.ObjectID != objectID {
			continue
		}
		if tag, ok := r.store.tags[item.TagID]; ok {
			t := tag
			item.Tag = &t
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Tag.Label < items[j].Tag.Label
	})
	return items, nil
}

var _ domain.TagRepository = (*tagRepositoryInMemory)(nil)
