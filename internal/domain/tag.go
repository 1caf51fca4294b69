package domain

// Tag — произвольная метка, навешиваемая на записи разных таблиц.
type Tag struct {
	ID    int64
	Label string
}

// ContentType связывает tagged_items с конкретной моделью,
// не фиксируя внешний ключ на одну таблицу.
type ContentType struct {
	ID    int64
	Model string
}

// Модели, для которых заведены content types.
const (
	ModelProduct    = "product"
	ModelCollection = "collection"
	ModelCustomer   = "customer"
)

// TaggedItem — привязка метки к объекту модели через content type.
type TaggedItem struct {
	ID            int64
	TagID         int64
	ContentTypeID int64
	ObjectID      int64

	Tag *Tag
}
